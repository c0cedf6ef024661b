package model

import "fmt"

// Ply is one half-move in the game history.
type Ply struct {
	Piece          PieceType       `json:"piece"`
	Color          Color           `json:"color"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      PieceType       `json:"promotion,omitempty"`
	Notation       string          `json:"notation"`
}

// makePly must run before the move is applied so the capture is still on the board.
func makePly(b *Board, m Move) Ply {
	piece := b.PieceAt(m.From)
	ply := Ply{
		Piece: piece.Type,
		Color: piece.Color,
		From:  m.From,
		To:    m.To,
	}
	if m.Kind != MoveCastle {
		ply.CapturedPiece = b.PieceAt(m.To).clone()
	}
	ply.Notation = notation(ply, m)
	return ply
}

func notation(ply Ply, m Move) string {
	switch m.Castle {
	case KingSide:
		return "O-O"
	case QueenSide:
		return "O-O-O"
	}
	capture := ""
	if ply.CapturedPiece != nil {
		capture = "x"
	}
	pawnFile := ""
	if ply.Piece == Pawn && ply.From.Col != ply.To.Col {
		pawnFile = ply.From.file()
	}
	return fmt.Sprintf("%s%s%s%s", ply.Piece.notation(), pawnFile, capture, ply.To)
}

func (p *Ply) promote(t PieceType) {
	p.Promotion = t
	p.Notation += "=" + t.notation()
}

func (p *Ply) annotate(st GameStatus) {
	switch {
	case st.IsCheckmate:
		p.Notation += "#"
	case st.IsCheck:
		p.Notation += "+"
	}
}
