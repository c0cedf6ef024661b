package model

type MoveKind string

const (
	MoveNormal    MoveKind = "normal"
	MoveCastle    MoveKind = "castle"
	MovePromotion MoveKind = "promotion"
)

type CastleSide string

const (
	KingSide  CastleSide = "kingside"
	QueenSide CastleSide = "queenside"
)

// Move is decided at generation time: a castle carries its side so the rook
// relocation never has to be inferred, and a promotion carries the chosen
// piece once one has been supplied.
type Move struct {
	From      Position   `json:"from"`
	To        Position   `json:"to"`
	Kind      MoveKind   `json:"kind"`
	Castle    CastleSide `json:"castle,omitempty"`
	Promotion PieceType  `json:"promotion,omitempty"`
}

type castleRule struct {
	side    CastleSide
	rookCol int
	kingTo  int
	rookTo  int
	between []int // must be empty
	path    []int // must not be attacked, the king's own square aside
}

var castleRules = []castleRule{
	{side: KingSide, rookCol: 7, kingTo: 6, rookTo: 5, between: []int{5, 6}, path: []int{5, 6}},
	{side: QueenSide, rookCol: 0, kingTo: 2, rookTo: 3, between: []int{1, 2, 3}, path: []int{3, 2}},
}

const kingHomeCol = 4

func castleRuleFor(side CastleSide) (castleRule, bool) {
	for _, r := range castleRules {
		if r.side == side {
			return r, true
		}
	}
	return castleRule{}, false
}

// LegalMoves returns the moves of the piece on from that do not leave its own
// king attacked, castling included.
func LegalMoves(b *Board, from Position) []Move {
	p := b.PieceAt(from)
	if p == nil {
		return nil
	}
	var legal []Move
	for _, m := range pseudoMoves(b, from, p) {
		if isLegal(b, m, p.Color) {
			legal = append(legal, m)
		}
	}
	if p.Type == King {
		legal = append(legal, castleMoves(b, from, p)...)
	}
	return legal
}

// AllLegalMoves enumerates legal moves for every piece of color.
func AllLegalMoves(b *Board, color Color) []Move {
	var all []Move
	for _, sq := range b.Squares(color) {
		all = append(all, LegalMoves(b, sq.Position)...)
	}
	return all
}

func hasLegalMove(b *Board, color Color) bool {
	for _, sq := range b.Squares(color) {
		if len(LegalMoves(b, sq.Position)) > 0 {
			return true
		}
	}
	return false
}

// Destinations projects moves onto their target squares.
func Destinations(moves []Move) []Position {
	out := make([]Position, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To)
	}
	return out
}

// pseudoMoves applies movement patterns and the target-occupancy rule only.
// Built on AttackSet for everything but pawn pushes.
func pseudoMoves(b *Board, from Position, p *Piece) []Move {
	var moves []Move
	if p.Type == Pawn {
		return pawnMoves(b, from, p)
	}
	for _, to := range AttackSet(b, from) {
		if t := b.PieceAt(to); t == nil || t.Color != p.Color {
			moves = append(moves, Move{From: from, To: to, Kind: MoveNormal})
		}
	}
	return moves
}

func pawnMoves(b *Board, from Position, p *Piece) []Move {
	var moves []Move
	add := func(to Position) {
		kind := MoveNormal
		if to.Row == p.Color.Opponent().backRank() {
			kind = MovePromotion
		}
		moves = append(moves, Move{From: from, To: to, Kind: kind})
	}
	fwd := p.Color.forward()
	one := from.add(fwd, 0)
	if b.isEmpty(one) {
		add(one)
		two := from.add(2*fwd, 0)
		if !p.HasMoved && b.isEmpty(two) {
			add(two)
		}
	}
	for _, to := range AttackSet(b, from) {
		if t := b.PieceAt(to); t != nil && t.Color != p.Color {
			add(to)
		}
	}
	return moves
}

// isLegal makes m on b, tests the mover's king and unmakes it.
func isLegal(b *Board, m Move, mover Color) bool {
	u := b.makeMove(m)
	inCheck := IsKingInCheck(b, mover)
	b.unmakeMove(u)
	return !inCheck
}

// castleMoves is only consulted for legality-filtered generation; attack
// queries never reach it.
func castleMoves(b *Board, from Position, king *Piece) []Move {
	home := king.Color.backRank()
	if king.HasMoved || from != Pos(home, kingHomeCol) || IsKingInCheck(b, king.Color) {
		return nil
	}
	var moves []Move
	for _, r := range castleRules {
		if canCastle(b, king.Color, r) {
			moves = append(moves, Move{From: from, To: Pos(home, r.kingTo), Kind: MoveCastle, Castle: r.side})
		}
	}
	return moves
}

func canCastle(b *Board, color Color, r castleRule) bool {
	home := color.backRank()
	rook := b.PieceAt(Pos(home, r.rookCol))
	if rook == nil || rook.Type != Rook || rook.Color != color || rook.HasMoved {
		return false
	}
	for _, col := range r.between {
		if !b.isEmpty(Pos(home, col)) {
			return false
		}
	}
	for _, col := range r.path {
		if IsSquareAttacked(b, Pos(home, col), color.Opponent()) {
			return false
		}
	}
	return true
}
