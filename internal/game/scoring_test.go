package game

import "testing"

func TestScorePlays(t *testing.T) {
	off5 := offenseCard("off5", 5, 2)
	off4 := offenseCard("off4", 4, 2)
	off3 := offenseCard("off3", 3, 1)
	def3 := defenseCard("def3", 3, 1)
	def5 := defenseCard("def5", 5, 2)
	sup2 := supportCard("sup2", 2, 1)

	tests := []struct {
		name   string
		a, b   Play
		pa, pb int
	}{
		{"offense beats weaker defense", CardPlay(off5, nil), CardPlay(def3, nil), 2, 0},
		{"defense stops offense", CardPlay(off3, nil), CardPlay(def5, nil), 0, 0},
		{"offense trade", CardPlay(off4, nil), CardPlay(off3, nil), 4, 3},
		{"defense standoff", CardPlay(def3, nil), CardPlay(def5, nil), 0, 0},
		{"support boosts offense", CardPlay(off3, sup2), CardPlay(def3, nil), 2, 0},
		{"support boosts defense", CardPlay(off5, nil), CardPlay(def3, sup2), 0, 0},
		{"pass concedes boosted power", CardPlay(off4, sup2), Pass(), 6, 0},
		{"pass concedes to defense", Pass(), CardPlay(def3, nil), 0, 3},
		{"double pass", Pass(), Pass(), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa, pb := ScorePlays(tt.a, tt.b)
			if pa != tt.pa || pb != tt.pb {
				t.Errorf("ScorePlays(%s, %s) = %d, %d; want %d, %d", tt.a, tt.b, pa, pb, tt.pa, tt.pb)
			}
		})
	}
}

func TestScorePlaysIsSymmetric(t *testing.T) {
	sup := supportCard("sup", 2, 1)
	plays := []Play{Pass()}
	for power := 1; power <= 6; power++ {
		off := offenseCard("off", power, 1)
		def := defenseCard("def", power, 1)
		plays = append(plays, CardPlay(off, nil), CardPlay(off, sup), CardPlay(def, nil), CardPlay(def, sup))
	}
	for _, a := range plays {
		for _, b := range plays {
			pa, pb := ScorePlays(a, b)
			qb, qa := ScorePlays(b, a)
			if pa != qa || pb != qb {
				t.Fatalf("asymmetric scoring for %s vs %s: (%d,%d) vs swapped (%d,%d)", a, b, pa, pb, qa, qb)
			}
			if pa < 0 || pb < 0 {
				t.Fatalf("negative score for %s vs %s", a, b)
			}
		}
	}
}

func TestScoreClassic(t *testing.T) {
	striker := &Card{ID: "striker", Type: CardTypeOffense, Offense: 6, Defense: 5}
	guard := &Card{ID: "guard", Type: CardTypeDefense, Offense: 2, Defense: 4}
	wing := &Card{ID: "wing", Type: CardTypeOffense, Offense: 4, Defense: 10}
	helper := &Card{ID: "helper", Type: CardTypeSupport, Agility: 5}

	tests := []struct {
		name   string
		a, b   Play
		pa, pb int
	}{
		{"offense with support into defense", CardPlay(striker, helper), CardPlay(guard, nil), 4, 0},
		// Offense cards defend with 30% of their Defense, rounded down.
		{"offense trade", CardPlay(striker, nil), CardPlay(wing, nil), 3, 3},
		{"pass concedes offense", Pass(), CardPlay(striker, helper), 0, 8},
		{"pass against defense", Pass(), CardPlay(guard, nil), 0, 0},
		{"double pass", Pass(), Pass(), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa, pb := ScoreClassic(tt.a, tt.b)
			if pa != tt.pa || pb != tt.pb {
				t.Errorf("ScoreClassic = %d, %d; want %d, %d", pa, pb, tt.pa, tt.pb)
			}
		})
	}
}

func TestHandStrength(t *testing.T) {
	hand := []*Card{
		{Type: CardTypeOffense, Offense: 3},
		{Type: CardTypeOffense, Offense: 9},
		{Type: CardTypeDefense, Offense: 10},
		{Type: CardTypeOffense, Offense: 5},
		{Type: CardTypeOffense, Offense: 7},
	}
	if got := HandStrength(hand); got != 21 {
		t.Errorf("HandStrength = %d, want 21", got)
	}
	if got := HandStrength(hand[:1]); got != 3 {
		t.Errorf("HandStrength of one card = %d, want 3", got)
	}
	if got := HandStrength(nil); got != 0 {
		t.Errorf("HandStrength of empty hand = %d, want 0", got)
	}
}
