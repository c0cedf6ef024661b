package model

import (
	"sort"
	"testing"
)

func mustFEN(t *testing.T, fen string) *Board {
	t.Helper()
	b, _, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) error: %v", fen, err)
	}
	return b
}

func sq(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q) error: %v", s, err)
	}
	return p
}

func squares(t *testing.T, names ...string) []Position {
	t.Helper()
	out := make([]Position, 0, len(names))
	for _, n := range names {
		out = append(out, sq(t, n))
	}
	return sortPositions(out)
}

func sortPositions(ps []Position) []Position {
	out := append([]Position{}, ps...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func testSettings(clockSeconds int) Settings {
	return Settings{
		Player1:      Player{Name: "Alice", Color: White},
		Player2:      Player{Name: "Bob", Color: Black},
		FirstMover:   White,
		ClockSeconds: clockSeconds,
	}
}

func newTestGame(t *testing.T, s Settings) *Game {
	t.Helper()
	g, err := NewGame("test-game", s)
	if err != nil {
		t.Fatalf("NewGame() error: %v", err)
	}
	return g
}

// play makes a sequence of moves given as "e2e4" style strings.
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if err := g.MakeMove(sq(t, m[:2]), sq(t, m[2:4]), ""); err != nil {
			t.Fatalf("MakeMove(%s) error: %v", m, err)
		}
	}
}
