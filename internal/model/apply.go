package model

import "fmt"

// undo is what unmakeMove needs to restore the board after a simulated move.
type undo struct {
	move     Move
	moved    *Piece
	captured *Piece
}

// makeMove relocates pieces for legality simulation only. Flags and piece
// types are left alone since check detection never reads them.
func (b *Board) makeMove(m Move) undo {
	u := undo{move: m, moved: b.PieceAt(m.From), captured: b.PieceAt(m.To)}
	b.Set(m.To, u.moved)
	b.Set(m.From, nil)
	if m.Kind == MoveCastle {
		if r, ok := castleRuleFor(m.Castle); ok {
			home := m.From.Row
			b.Set(Pos(home, r.rookTo), b.PieceAt(Pos(home, r.rookCol)))
			b.Set(Pos(home, r.rookCol), nil)
		}
	}
	return u
}

func (b *Board) unmakeMove(u undo) {
	m := u.move
	if m.Kind == MoveCastle {
		if r, ok := castleRuleFor(m.Castle); ok {
			home := m.From.Row
			b.Set(Pos(home, r.rookCol), b.PieceAt(Pos(home, r.rookTo)))
			b.Set(Pos(home, r.rookTo), nil)
		}
	}
	b.Set(m.From, u.moved)
	b.Set(m.To, u.captured)
}

// CastleRookMove records the rook relocation that accompanied a castle.
type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// MoveResult describes the board mutation ApplyMove performed.
type MoveResult struct {
	Moved            *Piece
	Captured         *Piece
	CastleRookMove   *CastleRookMove
	PromotionPending bool
}

// ApplyMove mutates b for an accepted move: the mover relocates and is marked
// as moved, any occupant of the destination is removed, a castle relocates the
// rook in the same step, and a promotion either rewrites the piece type or,
// when no piece was chosen yet, reports that a choice is pending.
func ApplyMove(b *Board, m Move) (MoveResult, error) {
	piece := b.PieceAt(m.From)
	if piece == nil {
		return MoveResult{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}
	res := MoveResult{Moved: piece}
	if m.Kind != MoveCastle {
		res.Captured = b.PieceAt(m.To)
	}

	b.Set(m.To, piece)
	b.Set(m.From, nil)
	piece.HasMoved = true

	switch m.Kind {
	case MoveCastle:
		r, ok := castleRuleFor(m.Castle)
		if !ok {
			return res, fmt.Errorf("%w: unknown castle side %q", ErrIllegalMove, m.Castle)
		}
		home := m.From.Row
		rookFrom, rookTo := Pos(home, r.rookCol), Pos(home, r.rookTo)
		rook := b.PieceAt(rookFrom)
		b.Set(rookTo, rook)
		b.Set(rookFrom, nil)
		if rook != nil {
			rook.HasMoved = true
		}
		res.CastleRookMove = &CastleRookMove{From: rookFrom, To: rookTo}
	case MovePromotion:
		if m.Promotion == "" {
			res.PromotionPending = true
			break
		}
		if err := Promote(b, m.To, m.Promotion); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Promote rewrites the pawn on at into t in place.
func Promote(b *Board, at Position, t PieceType) error {
	if !t.IsPromotionChoice() {
		return fmt.Errorf("%w: %q", ErrInvalidPromotion, t)
	}
	p := b.PieceAt(at)
	if p == nil || p.Type != Pawn {
		return fmt.Errorf("%w: no pawn on %s", ErrNoPromotionPending, at)
	}
	p.Type = t
	return nil
}
