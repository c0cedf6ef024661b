package model

import (
	"fmt"
	"strings"
)

var fenPieces = map[rune]PieceType{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN builds a board from the placement field of a FEN string. The side
// to move field is optional and defaults to White. Anything after the
// castling field is ignored since en passant and move counters are not
// modelled.
//
// Has-moved flags are inferred: a pawn off its home rank, or a king or rook
// off its starting square, has moved. When a castling field is present, rooks
// and kings without a matching right are marked as moved too.
func ParseFEN(fen string) (*Board, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, "", fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != boardSize {
		return nil, "", fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidFEN, boardSize, len(ranks))
	}

	b := NewEmptyBoard()
	for row, rank := range ranks {
		col := 0
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			t, ok := fenPieces[toLower(ch)]
			if !ok {
				return nil, "", fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if col >= boardSize {
				return nil, "", fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, boardSize-row)
			}
			color := Black
			if ch >= 'A' && ch <= 'Z' {
				color = White
			}
			at := Pos(row, col)
			b.place(at, color, t)
			b.PieceAt(at).HasMoved = !onHomeSquare(t, color, at)
			col++
		}
		if col != boardSize {
			return nil, "", fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, boardSize-row, col)
		}
	}

	side := White
	if len(fields) > 1 {
		switch fields[1] {
		case "w":
		case "b":
			side = Black
		default:
			return nil, "", fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
		}
	}
	if len(fields) > 2 {
		applyCastlingRights(b, fields[2])
	}
	return b, side, nil
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func onHomeSquare(t PieceType, color Color, at Position) bool {
	switch t {
	case Pawn:
		return at.Row == color.backRank()+color.forward()
	case King:
		return at == Pos(color.backRank(), kingHomeCol)
	case Rook:
		return at.Row == color.backRank() && (at.Col == 0 || at.Col == boardSize-1)
	}
	return at.Row == color.backRank()
}

func applyCastlingRights(b *Board, rights string) {
	type corner struct {
		right rune
		color Color
		col   int
	}
	corners := []corner{{'K', White, 7}, {'Q', White, 0}, {'k', Black, 7}, {'q', Black, 0}}
	anyRight := map[Color]bool{}
	for _, c := range corners {
		has := strings.ContainsRune(rights, c.right)
		anyRight[c.color] = anyRight[c.color] || has
		if has {
			continue
		}
		if rook := b.PieceAt(Pos(c.color.backRank(), c.col)); rook != nil && rook.Type == Rook && rook.Color == c.color {
			rook.HasMoved = true
		}
	}
	for _, color := range []Color{White, Black} {
		if anyRight[color] {
			continue
		}
		if at, ok := b.FindKing(color); ok {
			b.PieceAt(at).HasMoved = true
		}
	}
}
