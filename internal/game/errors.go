package game

import "errors"

// Rejection reasons returned by the driver operations. A rejected call
// leaves the match untouched.
var (
	ErrWrongState         = errors.New("not allowed in current state")
	ErrMatchOver          = errors.New("match is over")
	ErrNotInHand          = errors.New("card not in hand")
	ErrNotSelected        = errors.New("card not selected")
	ErrNeedsMain          = errors.New("select an offense or defense card first")
	ErrInvalidCombo       = errors.New("invalid card combination")
	ErrInsufficientEnergy = errors.New("not enough energy")
	ErrAlreadyCycled      = errors.New("already cycled this turn")
	ErrNoSelection        = errors.New("no main card selected")
	ErrUnknownIntent      = errors.New("unknown intent")
)
