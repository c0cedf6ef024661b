package model

import (
	"fmt"
	"strings"
)

const boardSize = 8

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// Title is the capitalised color name used in status messages.
func (c Color) Title() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return ""
}

// forward is the row delta of a pawn advance. Row 0 is Black's back rank.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

func (c Color) backRank() int {
	if c == White {
		return boardSize - 1
	}
	return 0
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// IsPromotionChoice reports whether a pawn may be promoted to p.
func (p PieceType) IsPromotionChoice() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

type Piece struct {
	ID       string    `json:"id"`
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

func (p *Piece) clone() *Piece {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < boardSize && p.Col >= 0 && p.Col < boardSize
}

func (p Position) add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// String renders the square in algebraic form, e.g. row 6 col 4 is "e2".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, boardSize-p.Row)
}

func (p Position) file() string {
	return fmt.Sprintf("%c", 'a'+p.Col)
}

// ParseSquare converts algebraic notation ("e4") into a Position.
func ParseSquare(s string) (Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, s)
	}
	return Position{Row: boardSize - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

// Board is the 8x8 grid. The grid is the only record of occupancy.
type Board struct {
	squares [boardSize][boardSize]*Piece
}

// Square pairs a coordinate with its occupant for callers that walk the grid.
type Square struct {
	Position Position `json:"position"`
	Piece    *Piece   `json:"piece"`
}

func NewEmptyBoard() *Board {
	return &Board{}
}

var backRankOrder = [boardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard initial arrangement.
func NewBoard() *Board {
	b := &Board{}
	for col := 0; col < boardSize; col++ {
		b.place(Pos(0, col), Black, backRankOrder[col])
		b.place(Pos(1, col), Black, Pawn)
		b.place(Pos(6, col), White, Pawn)
		b.place(Pos(7, col), White, backRankOrder[col])
	}
	return b
}

func (b *Board) place(at Position, color Color, t PieceType) {
	b.squares[at.Row][at.Col] = &Piece{
		ID:    pieceID(t, color, at),
		Type:  t,
		Color: color,
	}
}

func pieceID(t PieceType, color Color, at Position) string {
	return fmt.Sprintf("%s_%s_%s", t, color, at)
}

// PieceAt returns nil for empty or off-grid squares.
func (b *Board) PieceAt(at Position) *Piece {
	if !at.InBounds() {
		return nil
	}
	return b.squares[at.Row][at.Col]
}

// Set places p (or clears the square when p is nil). Off-grid writes are ignored.
func (b *Board) Set(at Position, p *Piece) {
	if !at.InBounds() {
		return
	}
	b.squares[at.Row][at.Col] = p
}

func (b *Board) isEmpty(at Position) bool {
	return at.InBounds() && b.squares[at.Row][at.Col] == nil
}

// FindKing locates the king of color. ok is false if it is not on the board.
func (b *Board) FindKing(color Color) (Position, bool) {
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			p := b.squares[row][col]
			if p != nil && p.Type == King && p.Color == color {
				return Pos(row, col), true
			}
		}
	}
	return Position{}, false
}

// Squares lists occupied squares holding pieces of color, in row-major order.
func (b *Board) Squares(color Color) []Square {
	var out []Square
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			p := b.squares[row][col]
			if p != nil && p.Color == color {
				out = append(out, Square{Position: Pos(row, col), Piece: p})
			}
		}
	}
	return out
}

func (b *Board) PieceCount() int {
	n := 0
	for row := range b.squares {
		for _, p := range b.squares[row] {
			if p != nil {
				n++
			}
		}
	}
	return n
}

// Clone deep-copies the board, pieces included.
func (b *Board) Clone() *Board {
	c := &Board{}
	for row := range b.squares {
		for col, p := range b.squares[row] {
			c.squares[row][col] = p.clone()
		}
	}
	return c
}

// Grid returns a deep copy of the squares for serialisation.
func (b *Board) Grid() [][]*Piece {
	grid := make([][]*Piece, boardSize)
	for row := range b.squares {
		grid[row] = make([]*Piece, boardSize)
		for col, p := range b.squares[row] {
			grid[row][col] = p.clone()
		}
	}
	return grid
}
