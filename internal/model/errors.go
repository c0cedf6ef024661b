package model

import "errors"

// Commands rejected with one of these leave the game untouched.
var (
	ErrGameOver           = errors.New("game is over")
	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrNoPromotionPending = errors.New("no promotion pending")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrIllegalMove        = errors.New("illegal move")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrOutOfBounds        = errors.New("square out of bounds")
	ErrInvalidSettings    = errors.New("invalid game settings")
	ErrInvalidFEN         = errors.New("invalid FEN")
)

// IsIgnorable reports whether err is an illegal command that callers may drop
// without surfacing it, as opposed to a configuration problem.
func IsIgnorable(err error) bool {
	return errors.Is(err, ErrGameOver) ||
		errors.Is(err, ErrPromotionPending) ||
		errors.Is(err, ErrNoPromotionPending) ||
		errors.Is(err, ErrInvalidPromotion) ||
		errors.Is(err, ErrIllegalMove) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrOutOfBounds)
}
