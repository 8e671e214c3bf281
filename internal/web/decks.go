package web

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/peterkuimelis/momentrivals/internal/game"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	*game.Card
	Category string `json:"playCategory,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Cards   []string `json:"cards"`
	Offense int      `json:"offense"`
	Defense int      `json:"defense"`
	Support int      `json:"support"`
	game.ValidationResult
}

func (s *Server) loadDecks(w http.ResponseWriter) (*game.DeckFile, bool) {
	df, err := game.LoadDeckFile(s.decksFile)
	if err != nil {
		s.logf("load decks: %v", err)
		http.Error(w, "could not read decks file", http.StatusInternalServerError)
		return nil, false
	}
	return df, true
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	df, ok := s.loadDecks(w)
	if !ok {
		return
	}
	cards := make([]CardInfo, 0, len(df.Moments))
	for _, m := range df.Moments {
		cards = append(cards, CardInfo{Card: game.MomentToCard(m), Category: m.PlayCategory})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	df, ok := s.loadDecks(w)
	if !ok {
		return
	}
	decks := make([]DeckInfo, 0, len(df.Decks))
	for i, entry := range df.Decks {
		di := DeckInfo{Number: i + 1, Name: entry.Name}
		cards, err := df.Cards(entry)
		if err != nil {
			di.ValidationResult = game.ValidationResult{Errors: []string{err.Error()}}
			decks = append(decks, di)
			continue
		}
		for _, c := range cards {
			di.Cards = append(di.Cards, c.Name)
			switch c.Type {
			case game.CardTypeOffense:
				di.Offense++
			case game.CardTypeDefense:
				di.Defense++
			case game.CardTypeSupport:
				di.Support++
			}
		}
		di.ValidationResult = game.ValidateDeck(cards, s.game.MaxDeckSize)
		decks = append(decks, di)
	}
	writeJSON(w, http.StatusOK, decks)
}

// handleValidateDeck checks a list of moment records as a deck.
func (s *Server) handleValidateDeck(w http.ResponseWriter, r *http.Request) {
	var moments []game.Moment
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&moments); err != nil {
		writeJSON(w, http.StatusBadRequest, game.ValidationResult{Errors: []string{"Invalid JSON: " + err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, game.ValidateDeck(game.MomentsToCards(moments), s.game.MaxDeckSize))
}
