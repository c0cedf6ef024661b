package model

import (
	"fmt"
	"sync"
)

type Phase string

const (
	PhaseWaitingForMove    Phase = "waitingForMove"
	PhaseAwaitingPromotion Phase = "awaitingPromotion"
	PhaseGameOver          Phase = "gameOver"
)

// PendingPromotion exists between a pawn reaching the far rank and the
// promotion piece being chosen.
type PendingPromotion struct {
	Piece  *Piece   `json:"piece"`
	From   Position `json:"from"`
	Square Position `json:"square"`
	ply    Ply
}

// Capture is the piece taken by the latest move and where it stood.
type Capture struct {
	Piece  Piece    `json:"piece"`
	Square Position `json:"square"`
}

// CapturedPieces is keyed by the capturing side.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

type GameState struct {
	ID      string     `json:"id"`
	Board   [][]*Piece `json:"board"`
	ToMove  Color      `json:"toMove"`
	Phase   Phase      `json:"phase"`
	Status  GameStatus `json:"status"`
	Clock   ClockState `json:"clock"`
	Players struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	SelectedSquare   *Position         `json:"selectedSquare"`
	LegalMoves       []Position        `json:"legalMoves"`
	PendingPromotion *PendingPromotion `json:"pendingPromotion"`
	CapturedPieces   CapturedPieces    `json:"capturedPieces"`
	LastCapture      *Capture          `json:"lastCapture"`
	LastMove         *Move             `json:"lastMove"`
	CheckSquare      *Position         `json:"checkSquare"`
	DefeatedKing     *Position         `json:"defeatedKing"`
	MoveHistory      []Ply             `json:"moveHistory"`
}

// Game is a single two-player game. Every exported method takes the game
// lock, so commands and clock ticks never interleave.
type Game struct {
	ID       string
	mu       sync.Mutex
	settings Settings
	board    *Board
	toMove   Color
	phase    Phase
	status   GameStatus
	clock    *Clock

	selected   *Position
	selectable []Move
	pending    *PendingPromotion

	captured     CapturedPieces
	lastCapture  *Capture
	lastMove     *Move
	checkSquare  *Position
	defeatedKing *Position
	history      []Ply

	listeners []Listener
	events    []Event
}

func NewGame(id string, settings Settings) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		ID:       id,
		settings: settings,
		clock:    NewClock(settings.ClockSeconds),
	}
	g.reset()
	g.events = nil
	return g, nil
}

// Subscribe registers l for every event emitted from now on.
func (g *Game) Subscribe(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

func (g *Game) emit(e Event) {
	e.GameID = g.ID
	g.events = append(g.events, e)
}

// unlockAndDispatch releases the lock taken by the caller and then delivers
// the events queued while it was held.
func (g *Game) unlockAndDispatch() {
	events := g.events
	g.events = nil
	listeners := append([]Listener(nil), g.listeners...)
	g.mu.Unlock()
	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}

// Reset restores the initial position with the same settings.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.unlockAndDispatch()
	g.reset()
	st := g.status
	g.emit(Event{Type: EventGameReset, Status: &st})
}

func (g *Game) reset() {
	board := NewBoard()
	if g.settings.StartFEN != "" {
		if b, _, err := ParseFEN(g.settings.StartFEN); err == nil {
			board = b
		}
	}
	g.board = board
	g.toMove = g.settings.FirstMover
	g.clearSelection()
	g.pending = nil
	g.captured = CapturedPieces{White: []Piece{}, Black: []Piece{}}
	g.lastCapture = nil
	g.lastMove = nil
	g.defeatedKing = nil
	g.history = nil
	g.clock.Reset()
	g.settle()
}

// SelectOrMove is the click-style command: a pending legal destination of the
// selected piece executes the move, the selected square again deselects, and
// a piece of the side to move becomes the new selection whose legal
// destinations are returned.
func (g *Game) SelectOrMove(at Position) ([]Position, error) {
	g.mu.Lock()
	defer g.unlockAndDispatch()

	if !at.InBounds() {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, at)
	}
	if err := g.acceptingMoves(); err != nil {
		return nil, err
	}
	if g.selected != nil {
		if *g.selected == at {
			g.clearSelection()
			return nil, nil
		}
		for _, m := range g.selectable {
			if m.To == at {
				return nil, g.executeMove(m)
			}
		}
	}
	p := g.board.PieceAt(at)
	if p == nil || p.Color != g.toMove {
		g.clearSelection()
		return nil, nil
	}
	g.selected = &at
	g.selectable = LegalMoves(g.board, at)
	return Destinations(g.selectable), nil
}

// MakeMove plays from->to directly. promotion may be empty, in which case a
// pawn reaching the far rank leaves the game awaiting a promotion choice.
func (g *Game) MakeMove(from, to Position, promotion PieceType) error {
	g.mu.Lock()
	defer g.unlockAndDispatch()

	if !from.InBounds() || !to.InBounds() {
		return fmt.Errorf("%w: %v -> %v", ErrOutOfBounds, from, to)
	}
	if err := g.acceptingMoves(); err != nil {
		return err
	}
	p := g.board.PieceAt(from)
	if p == nil {
		return fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from)
	}
	if p.Color != g.toMove {
		return ErrNotYourTurn
	}
	for _, m := range LegalMoves(g.board, from) {
		if m.To != to {
			continue
		}
		if m.Kind == MovePromotion && promotion != "" {
			if !promotion.IsPromotionChoice() {
				return fmt.Errorf("%w: %q", ErrInvalidPromotion, promotion)
			}
			m.Promotion = promotion
		}
		return g.executeMove(m)
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalMove, from, to)
}

// ChoosePromotion completes a pending promotion.
func (g *Game) ChoosePromotion(t PieceType) error {
	g.mu.Lock()
	defer g.unlockAndDispatch()

	if g.phase != PhaseAwaitingPromotion || g.pending == nil {
		return ErrNoPromotionPending
	}
	sq := g.pending.Square
	if err := Promote(g.board, sq, t); err != nil {
		return err
	}
	ply := g.pending.ply
	ply.promote(t)
	g.pending = nil
	g.emit(Event{Type: EventPiecePromoted, Piece: g.board.PieceAt(sq).clone(), Square: &sq, Color: ply.Color})
	g.finishTurn(ply)
	return nil
}

// Tick advances the running clock by one second. It reports whether a clock
// was running.
func (g *Game) Tick() bool {
	g.mu.Lock()
	defer g.unlockAndDispatch()

	if g.phase != PhaseWaitingForMove {
		return false
	}
	color, expired := g.clock.Tick()
	if color == "" {
		return false
	}
	cs := g.clock.State()
	g.emit(Event{Type: EventClockTicked, Color: color, Clock: &cs})
	if !expired {
		return true
	}

	st := timeoutStatus(color)
	st.Message = g.describe(st)
	g.status = st
	g.phase = PhaseGameOver
	g.checkSquare = nil
	g.clearSelection()
	if k, ok := g.board.FindKing(color); ok {
		g.defeatedKing = &k
	}
	g.emit(Event{Type: EventGameEnded, Color: color, Status: &st})
	return true
}

func (g *Game) acceptingMoves() error {
	switch g.phase {
	case PhaseGameOver:
		return ErrGameOver
	case PhaseAwaitingPromotion:
		return ErrPromotionPending
	}
	return nil
}

func (g *Game) clearSelection() {
	g.selected = nil
	g.selectable = nil
}

func (g *Game) executeMove(m Move) error {
	ply := makePly(g.board, m)
	mover := g.board.PieceAt(m.From)
	// a capture is only reported for the move that made it
	g.lastCapture = nil
	if captured := g.board.PieceAt(m.To); captured != nil && m.Kind != MoveCastle {
		g.recordCapture(mover.Color, captured, m.To)
	}

	res, err := ApplyMove(g.board, m)
	if err != nil {
		return err
	}
	ply.CastleRookMove = res.CastleRookMove
	g.clearSelection()
	g.lastMove = &m
	g.clock.Stop()

	if res.PromotionPending {
		g.phase = PhaseAwaitingPromotion
		g.pending = &PendingPromotion{Piece: mover.clone(), From: m.From, Square: m.To, ply: ply}
		sq := m.To
		g.emit(Event{Type: EventPromotionPending, Piece: mover.clone(), Square: &sq, Color: mover.Color})
		return nil
	}
	if m.Kind == MovePromotion {
		ply.promote(m.Promotion)
		sq := m.To
		g.emit(Event{Type: EventPiecePromoted, Piece: mover.clone(), Square: &sq, Color: mover.Color})
	}
	g.finishTurn(ply)
	return nil
}

func (g *Game) recordCapture(by Color, captured *Piece, at Position) {
	c := *captured
	if by == White {
		g.captured.White = append(g.captured.White, c)
	} else {
		g.captured.Black = append(g.captured.Black, c)
	}
	g.lastCapture = &Capture{Piece: c, Square: at}
	g.emit(Event{Type: EventPieceCaptured, Piece: &c, Square: &at, Color: by})
}

// finishTurn hands the move to the other side and reclassifies the position.
func (g *Game) finishTurn(ply Ply) {
	g.toMove = g.toMove.Opponent()
	g.settle()
	ply.annotate(g.status)
	g.history = append(g.history, ply)

	g.emit(Event{Type: EventMoveMade, Ply: &ply, Color: ply.Color})
	st := g.status
	if st.IsCheck && !st.IsCheckmate {
		sq := *g.checkSquare
		g.emit(Event{Type: EventCheckDeclared, Color: g.toMove, Square: &sq, Status: &st})
	}
	if st.Terminal() {
		g.emit(Event{Type: EventGameEnded, Color: g.toMove, Status: &st})
	}
}

// settle recomputes the status for the side to move and starts its clock
// unless the game is over.
func (g *Game) settle() {
	st := ComputeStatus(g.board, g.toMove)
	st.Message = g.describe(st)
	g.status = st

	g.checkSquare = nil
	king, hasKing := g.board.FindKing(g.toMove)
	if st.IsCheck && hasKing {
		g.checkSquare = &king
	}
	if st.Terminal() {
		g.phase = PhaseGameOver
		g.clock.Stop()
		if st.IsCheckmate && hasKing {
			g.defeatedKing = &king
		}
		return
	}
	g.phase = PhaseWaitingForMove
	g.clock.Start(g.toMove)
}

func (g *Game) describe(st GameStatus) string {
	switch {
	case st.IsCheckmate:
		w := g.settings.PlayerFor(*st.Winner)
		return fmt.Sprintf("Checkmate! %s (%s) wins!", w.Name, w.Color.Title())
	case st.IsStalemate:
		return "Stalemate! It's a draw."
	case st.IsTimeout:
		w := g.settings.PlayerFor(*st.Winner)
		return fmt.Sprintf("%s (%s) wins by timeout!", w.Name, w.Color.Title())
	}
	p := g.settings.PlayerFor(g.toMove)
	return fmt.Sprintf("%s's Turn (%s)", p.Name, p.Color.Title())
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := GameState{
		ID:             g.ID,
		Board:          g.board.Grid(),
		ToMove:         g.toMove,
		Phase:          g.phase,
		Status:         g.status,
		Clock:          g.clock.State(),
		LegalMoves:     Destinations(g.selectable),
		CapturedPieces: CapturedPieces{
			White: append([]Piece{}, g.captured.White...),
			Black: append([]Piece{}, g.captured.Black...),
		},
		MoveHistory: append([]Ply{}, g.history...),
	}
	for _, color := range []Color{White, Black} {
		p := g.settings.PlayerFor(color)
		cp := ClientPlayer{Name: p.Name, Color: color}
		if s, ok := g.clock.GetTimeLeft(color); ok {
			cp.TimeLeft = &s
		}
		if color == White {
			st.Players.White = cp
		} else {
			st.Players.Black = cp
		}
	}
	if g.status.Winner != nil {
		w := *g.status.Winner
		st.Status.Winner = &w
	}
	st.SelectedSquare = copyPos(g.selected)
	st.CheckSquare = copyPos(g.checkSquare)
	st.DefeatedKing = copyPos(g.defeatedKing)
	if g.pending != nil {
		pp := *g.pending
		pp.Piece = g.pending.Piece.clone()
		st.PendingPromotion = &pp
	}
	if g.lastCapture != nil {
		lc := *g.lastCapture
		st.LastCapture = &lc
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		st.LastMove = &lm
	}
	return st
}

func copyPos(p *Position) *Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (g *Game) Settings() Settings {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settings
}

// Board returns a deep copy of the current board.
func (g *Game) Board() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) Status() GameStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}
