package model

import "fmt"

type Outcome string

const (
	OutcomeOngoing   Outcome = "ongoing"
	OutcomeCheck     Outcome = "check"
	OutcomeCheckmate Outcome = "checkmate"
	OutcomeStalemate Outcome = "stalemate"
	OutcomeTimeout   Outcome = "timeout"
)

// GameStatus is derived from the board and the side to move; it is never
// authoritative.
type GameStatus struct {
	Message     string  `json:"message"`
	IsCheck     bool    `json:"isCheck"`
	IsCheckmate bool    `json:"isCheckmate"`
	IsStalemate bool    `json:"isStalemate"`
	IsTimeout   bool    `json:"isTimeout"`
	Winner      *Color  `json:"winner"`
	Outcome     Outcome `json:"outcome"`
}

func (s GameStatus) Terminal() bool {
	return s.IsCheckmate || s.IsStalemate || s.IsTimeout
}

// ComputeStatus classifies the position for sideToMove.
func ComputeStatus(b *Board, sideToMove Color) GameStatus {
	check := IsKingInCheck(b, sideToMove)
	if hasLegalMove(b, sideToMove) {
		st := GameStatus{
			Message: fmt.Sprintf("%s to move", sideToMove.Title()),
			IsCheck: check,
			Outcome: OutcomeOngoing,
		}
		if check {
			st.Outcome = OutcomeCheck
		}
		return st
	}
	if check {
		winner := sideToMove.Opponent()
		return GameStatus{
			Message:     fmt.Sprintf("Checkmate! %s wins!", winner.Title()),
			IsCheck:     true,
			IsCheckmate: true,
			Winner:      &winner,
			Outcome:     OutcomeCheckmate,
		}
	}
	return GameStatus{
		Message:     "Stalemate! It's a draw.",
		IsStalemate: true,
		Outcome:     OutcomeStalemate,
	}
}

func timeoutStatus(loser Color) GameStatus {
	winner := loser.Opponent()
	return GameStatus{
		Message:   fmt.Sprintf("%s wins by timeout!", winner.Title()),
		IsTimeout: true,
		Winner:    &winner,
		Outcome:   OutcomeTimeout,
	}
}
