package game

import "context"

// Step makes one human-side decision with policy: it releases the draw
// gate or locks in the policy's play. A play the match would reject is
// replaced by a pass.
func (m *Match) Step(human Policy) error {
	if m.WaitingForDraw {
		_, err := m.AdvanceManualDraw()
		return err
	}
	play, err := m.checkPlay(m.Players[PlayerHuman], human.ChoosePlay(m.PlayerView()))
	if err != nil || play.IsPass() {
		_, err = m.SelectPass()
		return err
	}
	if _, err := m.SelectCard(play.Main.ID); err != nil {
		return err
	}
	if play.Support != nil {
		if _, err := m.SelectCard(play.Support.ID); err != nil {
			return err
		}
	}
	_, err = m.PlayCard()
	return err
}

// PlayOut drives the human side with policy until the match ends.
func (m *Match) PlayOut(ctx context.Context, human Policy) error {
	for !m.Over() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(human); err != nil {
			return err
		}
	}
	return nil
}
