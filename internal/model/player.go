package model

import (
	"fmt"
	"strings"
)

type Player struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// Settings configures a game. ClockSeconds of zero disables the clock.
type Settings struct {
	Player1      Player `json:"player1"`
	Player2      Player `json:"player2"`
	FirstMover   Color  `json:"firstMover"`
	ClockSeconds int    `json:"clockSeconds"`
	StartFEN     string `json:"startFen,omitempty"`
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Player1.Name) == "" || strings.TrimSpace(s.Player2.Name) == "" {
		return fmt.Errorf("%w: player names are required", ErrInvalidSettings)
	}
	if !s.Player1.Color.Valid() || !s.Player2.Color.Valid() || s.Player1.Color == s.Player2.Color {
		return fmt.Errorf("%w: players need distinct colors", ErrInvalidSettings)
	}
	if !s.FirstMover.Valid() {
		return fmt.Errorf("%w: first mover %q", ErrInvalidSettings, s.FirstMover)
	}
	if s.ClockSeconds < 0 {
		return fmt.Errorf("%w: negative clock", ErrInvalidSettings)
	}
	if s.StartFEN != "" {
		if _, _, err := ParseFEN(s.StartFEN); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
	}
	return nil
}

// PlayerFor returns whichever player holds color.
func (s Settings) PlayerFor(color Color) Player {
	if s.Player1.Color == color {
		return s.Player1
	}
	return s.Player2
}

// ClientPlayer is the per-side view sent to clients.
type ClientPlayer struct {
	Name     string `json:"name"`
	Color    Color  `json:"color"`
	TimeLeft *int   `json:"timeLeft"`
}
