package model

var (
	rookDirs      = []Position{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs    = []Position{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	queenDirs     = append(append([]Position{}, rookDirs...), bishopDirs...)
	kingOffsets   = queenDirs
	knightOffsets = []Position{
		{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1},
		{Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2},
	}
)

// AttackSet returns every square the piece on from threatens, regardless of
// whether moving there would expose its own king. Squares held by either
// color are included when they are the first blocker on a ray; pawns attack
// their two forward diagonals even when empty. Pawn pushes are not attacks.
func AttackSet(b *Board, from Position) []Position {
	p := b.PieceAt(from)
	if p == nil {
		return nil
	}
	switch p.Type {
	case Pawn:
		var out []Position
		fwd := p.Color.forward()
		for _, dc := range []int{-1, 1} {
			if to := from.add(fwd, dc); to.InBounds() {
				out = append(out, to)
			}
		}
		return out
	case Knight:
		return steps(from, knightOffsets)
	case King:
		return steps(from, kingOffsets)
	case Bishop:
		return rays(b, from, bishopDirs)
	case Rook:
		return rays(b, from, rookDirs)
	case Queen:
		return rays(b, from, queenDirs)
	}
	return nil
}

func steps(from Position, offsets []Position) []Position {
	out := make([]Position, 0, len(offsets))
	for _, d := range offsets {
		if to := from.add(d.Row, d.Col); to.InBounds() {
			out = append(out, to)
		}
	}
	return out
}

func rays(b *Board, from Position, dirs []Position) []Position {
	var out []Position
	for _, d := range dirs {
		for to := from.add(d.Row, d.Col); to.InBounds(); to = to.add(d.Row, d.Col) {
			out = append(out, to)
			if b.PieceAt(to) != nil {
				break
			}
		}
	}
	return out
}

// IsSquareAttacked reports whether any piece of color by threatens sq. It
// walks outward from sq looking for attackers rather than generating every
// enemy attack set.
func IsSquareAttacked(b *Board, sq Position, by Color) bool {
	if !sq.InBounds() {
		return false
	}
	for _, d := range rookDirs {
		if t := firstOnRay(b, sq, d); t != nil && t.Color == by && (t.Type == Rook || t.Type == Queen) {
			return true
		}
	}
	for _, d := range bishopDirs {
		if t := firstOnRay(b, sq, d); t != nil && t.Color == by && (t.Type == Bishop || t.Type == Queen) {
			return true
		}
	}
	for _, d := range knightOffsets {
		if t := b.PieceAt(sq.add(d.Row, d.Col)); t != nil && t.Color == by && t.Type == Knight {
			return true
		}
	}
	for _, d := range kingOffsets {
		if t := b.PieceAt(sq.add(d.Row, d.Col)); t != nil && t.Color == by && t.Type == King {
			return true
		}
	}
	// a pawn of color by on row r attacks row r+forward, so it sits one row behind sq
	back := -by.forward()
	for _, dc := range []int{-1, 1} {
		if t := b.PieceAt(sq.add(back, dc)); t != nil && t.Color == by && t.Type == Pawn {
			return true
		}
	}
	return false
}

func firstOnRay(b *Board, from, d Position) *Piece {
	for to := from.add(d.Row, d.Col); to.InBounds(); to = to.add(d.Row, d.Col) {
		if p := b.PieceAt(to); p != nil {
			return p
		}
	}
	return nil
}

// IsKingInCheck reports whether color's king is attacked. A board without
// that king is treated as not in check.
func IsKingInCheck(b *Board, color Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, color.Opponent())
}
