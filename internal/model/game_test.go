package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func notations(h []Ply) []string {
	out := make([]string, 0, len(h))
	for _, p := range h {
		out = append(out, p.Notation)
	}
	return out
}

func recordEvents(g *Game) *[]EventType {
	var types []EventType
	g.Subscribe(func(e Event) {
		types = append(types, e.Type)
	})
	return &types
}

func TestNewGameValidation(t *testing.T) {
	valid := testSettings(60)
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing name", func(s *Settings) { s.Player1.Name = " " }},
		{"same colors", func(s *Settings) { s.Player2.Color = White }},
		{"bad color", func(s *Settings) { s.Player1.Color = "green" }},
		{"bad first mover", func(s *Settings) { s.FirstMover = "" }},
		{"negative clock", func(s *Settings) { s.ClockSeconds = -1 }},
		{"bad fen", func(s *Settings) { s.StartFEN = "not a fen" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if _, err := NewGame("g", s); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("NewGame() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := newTestGame(t, testSettings(60))
	st := g.GetState()

	if st.Phase != PhaseWaitingForMove || st.ToMove != White {
		t.Fatalf("phase %s to move %s, want waitingForMove/white", st.Phase, st.ToMove)
	}
	if st.Status.Message != "Alice's Turn (White)" {
		t.Errorf("message = %q", st.Status.Message)
	}
	if diff := cmp.Diff(NewBoard().Grid(), st.Board); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}
	if st.Clock.Active == nil || *st.Clock.Active != White {
		t.Errorf("active clock = %v, want white", st.Clock.Active)
	}
	wantWhite := ClientPlayer{Name: "Alice", Color: White, TimeLeft: intPtr(60)}
	if diff := cmp.Diff(wantWhite, st.Players.White); diff != "" {
		t.Errorf("white player mismatch (-want +got):\n%s", diff)
	}
	if st.Players.Black.Name != "Bob" {
		t.Errorf("black player = %q, want Bob", st.Players.Black.Name)
	}
	if len(st.MoveHistory) != 0 || st.LastMove != nil || st.SelectedSquare != nil {
		t.Errorf("fresh game carries history: %+v", st)
	}
}

func intPtr(i int) *int { return &i }

func TestFirstMoverBlack(t *testing.T) {
	s := testSettings(0)
	s.FirstMover = Black
	g := newTestGame(t, s)
	st := g.GetState()
	if st.ToMove != Black || st.Status.Message != "Bob's Turn (Black)" {
		t.Errorf("to move %s message %q", st.ToMove, st.Status.Message)
	}
	if err := g.MakeMove(sq(t, "e2"), sq(t, "e4"), ""); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("white move error = %v, want ErrNotYourTurn", err)
	}
}

func TestFoolsMate(t *testing.T) {
	g := newTestGame(t, testSettings(60))
	events := recordEvents(g)
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	st := g.GetState()
	if st.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want gameOver", st.Phase)
	}
	if !st.Status.IsCheckmate || st.Status.Winner == nil || *st.Status.Winner != Black {
		t.Fatalf("status = %+v, want Black to win by checkmate", st.Status)
	}
	if st.Status.Message != "Checkmate! Bob (Black) wins!" {
		t.Errorf("message = %q", st.Status.Message)
	}
	if len(AllLegalMoves(g.Board(), White)) != 0 {
		t.Error("checkmated side still has legal moves")
	}
	if diff := cmp.Diff([]string{"f3", "e5", "g4", "Qh4#"}, notations(st.MoveHistory)); diff != "" {
		t.Errorf("notation mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&Position{Row: 7, Col: 4}, st.DefeatedKing); diff != "" {
		t.Errorf("defeated king mismatch (-want +got):\n%s", diff)
	}
	if st.Clock.Active != nil {
		t.Errorf("clock still running for %s", *st.Clock.Active)
	}

	tail := (*events)[len(*events)-2:]
	if diff := cmp.Diff([]EventType{EventMoveMade, EventGameEnded}, tail); diff != "" {
		t.Errorf("final events mismatch (-want +got):\n%s", diff)
	}

	if err := g.MakeMove(sq(t, "a2"), sq(t, "a3"), ""); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after mate error = %v, want ErrGameOver", err)
	}
	if g.Tick() {
		t.Error("clock ticked after the game ended")
	}
}

func TestStalemateEndsGame(t *testing.T) {
	s := testSettings(60)
	s.StartFEN = "k7/8/8/1Q6/8/8/8/7K w - - 0 1"
	g := newTestGame(t, s)
	play(t, g, "b5b6")

	st := g.GetState()
	if !st.Status.IsStalemate || st.Status.Winner != nil || st.Phase != PhaseGameOver {
		t.Fatalf("status = %+v phase %s, want stalemate", st.Status, st.Phase)
	}
	if st.Status.Message != "Stalemate! It's a draw." {
		t.Errorf("message = %q", st.Status.Message)
	}
	if st.DefeatedKing != nil {
		t.Errorf("stalemate recorded a defeated king at %v", st.DefeatedKing)
	}
}

func TestCheckIsDeclared(t *testing.T) {
	s := testSettings(0)
	s.StartFEN = "4k3/8/8/8/8/8/8/R3K3 w - - 0 1"
	g := newTestGame(t, s)
	events := recordEvents(g)
	play(t, g, "a1a8")

	st := g.GetState()
	if !st.Status.IsCheck || st.Status.IsCheckmate {
		t.Fatalf("status = %+v, want check", st.Status)
	}
	if diff := cmp.Diff(&Position{Row: 0, Col: 4}, st.CheckSquare); diff != "" {
		t.Errorf("check square mismatch (-want +got):\n%s", diff)
	}
	if got := st.MoveHistory[0].Notation; got != "Ra8+" {
		t.Errorf("notation = %q, want Ra8+", got)
	}
	if diff := cmp.Diff([]EventType{EventMoveMade, EventCheckDeclared}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	play(t, g, "e8d7")
	if st := g.GetState(); st.CheckSquare != nil {
		t.Errorf("check square %v survived the escape", st.CheckSquare)
	}
}

func TestCaptureIsRecorded(t *testing.T) {
	g := newTestGame(t, testSettings(0))
	play(t, g, "e2e4", "d7d5")
	events := recordEvents(g)
	before := g.Board().PieceCount()
	play(t, g, "e4d5")

	st := g.GetState()
	if got := g.Board().PieceCount(); got != before-1 {
		t.Errorf("PieceCount() = %d, want %d", got, before-1)
	}
	want := []Piece{{ID: "pawn_black_d7", Type: Pawn, Color: Black, HasMoved: true}}
	if diff := cmp.Diff(want, st.CapturedPieces.White); diff != "" {
		t.Errorf("white captures mismatch (-want +got):\n%s", diff)
	}
	if len(st.CapturedPieces.Black) != 0 {
		t.Errorf("black captures = %v, want none", st.CapturedPieces.Black)
	}
	if st.LastCapture == nil || st.LastCapture.Square != sq(t, "d5") {
		t.Errorf("last capture = %+v, want on d5", st.LastCapture)
	}
	if got := st.MoveHistory[2].Notation; got != "exd5" {
		t.Errorf("notation = %q, want exd5", got)
	}
	if diff := cmp.Diff([]EventType{EventPieceCaptured, EventMoveMade}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestLastCaptureOnlyFollowsTheCapturingMove(t *testing.T) {
	g := newTestGame(t, testSettings(0))
	play(t, g, "e2e4", "d7d5", "e4d5")
	if st := g.GetState(); st.LastCapture == nil {
		t.Fatal("capture on d5 was not reported")
	}

	play(t, g, "g8f6")
	st := g.GetState()
	if st.LastCapture != nil {
		t.Errorf("last capture = %+v after a quiet move, want nil", st.LastCapture)
	}
	if got := len(st.CapturedPieces.White); got != 1 {
		t.Errorf("white captures = %d, want the d-pawn kept", got)
	}
}

func TestCastleThroughGame(t *testing.T) {
	s := testSettings(0)
	s.StartFEN = "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
	g := newTestGame(t, s)
	play(t, g, "e1g1")

	b := g.Board()
	if p := b.PieceAt(sq(t, "f1")); p == nil || p.Type != Rook || p.Color != White {
		t.Errorf("f1 = %+v, want the white rook", p)
	}
	if p := b.PieceAt(sq(t, "h1")); p != nil {
		t.Errorf("h1 = %+v, want empty", p)
	}
	st := g.GetState()
	ply := st.MoveHistory[0]
	if ply.Notation != "O-O" {
		t.Errorf("notation = %q, want O-O", ply.Notation)
	}
	wantRook := &CastleRookMove{From: sq(t, "h1"), To: sq(t, "f1")}
	if diff := cmp.Diff(wantRook, ply.CastleRookMove); diff != "" {
		t.Errorf("rook move mismatch (-want +got):\n%s", diff)
	}
	if st.LastMove == nil || st.LastMove.Kind != MoveCastle {
		t.Errorf("last move = %+v, want a castle", st.LastMove)
	}

	play(t, g, "e8c8")
	if p := g.Board().PieceAt(sq(t, "d8")); p == nil || p.Type != Rook {
		t.Errorf("d8 = %+v, want the black rook", p)
	}
}

func TestPromotionFlow(t *testing.T) {
	s := testSettings(30)
	s.StartFEN = "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	g := newTestGame(t, s)
	events := recordEvents(g)

	play(t, g, "e7e8")
	st := g.GetState()
	if st.Phase != PhaseAwaitingPromotion || st.PendingPromotion == nil {
		t.Fatalf("phase = %s pending %v, want awaiting promotion", st.Phase, st.PendingPromotion)
	}
	if st.PendingPromotion.Square != sq(t, "e8") {
		t.Errorf("pending square = %v, want e8", st.PendingPromotion.Square)
	}
	if st.ToMove != White {
		t.Errorf("turn passed to %s before the promotion was chosen", st.ToMove)
	}
	if st.Clock.Active != nil {
		t.Error("clock runs while a promotion is pending")
	}
	if g.Tick() {
		t.Error("Tick() advanced the clock during a pending promotion")
	}

	if err := g.MakeMove(sq(t, "e1"), sq(t, "d1"), ""); !errors.Is(err, ErrPromotionPending) {
		t.Errorf("MakeMove() error = %v, want ErrPromotionPending", err)
	}
	if _, err := g.SelectOrMove(sq(t, "e1")); !errors.Is(err, ErrPromotionPending) {
		t.Errorf("SelectOrMove() error = %v, want ErrPromotionPending", err)
	}
	if err := g.ChoosePromotion(King); !errors.Is(err, ErrInvalidPromotion) {
		t.Errorf("ChoosePromotion(king) error = %v, want ErrInvalidPromotion", err)
	}
	if g.Phase() != PhaseAwaitingPromotion {
		t.Fatal("an invalid choice cleared the pending promotion")
	}

	if err := g.ChoosePromotion(Queen); err != nil {
		t.Fatalf("ChoosePromotion(queen) error: %v", err)
	}
	st = g.GetState()
	if p := g.Board().PieceAt(sq(t, "e8")); p.Type != Queen || p.Color != White {
		t.Errorf("e8 = %+v, want a white queen", p)
	}
	if st.Phase != PhaseWaitingForMove || st.ToMove != Black || st.PendingPromotion != nil {
		t.Errorf("after promotion phase %s to move %s pending %v", st.Phase, st.ToMove, st.PendingPromotion)
	}
	if st.Clock.Active == nil || *st.Clock.Active != Black {
		t.Errorf("active clock = %v, want black", st.Clock.Active)
	}
	if got := st.MoveHistory[0].Notation; got != "e8=Q" {
		t.Errorf("notation = %q, want e8=Q", got)
	}
	want := []EventType{EventPromotionPending, EventPiecePromoted, EventMoveMade}
	if diff := cmp.Diff(want, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if err := g.ChoosePromotion(Queen); !errors.Is(err, ErrNoPromotionPending) {
		t.Errorf("second ChoosePromotion() error = %v, want ErrNoPromotionPending", err)
	}
}

func TestPromotionInOneCommand(t *testing.T) {
	s := testSettings(0)
	s.StartFEN = "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	g := newTestGame(t, s)
	if err := g.MakeMove(sq(t, "e7"), sq(t, "e8"), Bishop); err != nil {
		t.Fatalf("MakeMove() error: %v", err)
	}
	if p := g.Board().PieceAt(sq(t, "e8")); p.Type != Bishop {
		t.Errorf("e8 holds %s, want bishop", p.Type)
	}
	st := g.GetState()
	if st.Phase != PhaseWaitingForMove || st.MoveHistory[0].Notation != "e8=B" {
		t.Errorf("phase %s notation %q", st.Phase, st.MoveHistory[0].Notation)
	}
}

func TestSelectOrMove(t *testing.T) {
	g := newTestGame(t, testSettings(0))

	got, err := g.SelectOrMove(sq(t, "e2"))
	if err != nil {
		t.Fatalf("select e2 error: %v", err)
	}
	if diff := cmp.Diff(squares(t, "e3", "e4"), sortPositions(got)); diff != "" {
		t.Errorf("e2 destinations mismatch (-want +got):\n%s", diff)
	}
	if st := g.GetState(); st.SelectedSquare == nil || *st.SelectedSquare != sq(t, "e2") {
		t.Errorf("selected = %v, want e2", st.SelectedSquare)
	}

	// same square deselects
	g.SelectOrMove(sq(t, "e2"))
	if st := g.GetState(); st.SelectedSquare != nil || len(st.LegalMoves) != 0 {
		t.Errorf("selection survived a second click: %v %v", st.SelectedSquare, st.LegalMoves)
	}

	// another own piece reselects
	g.SelectOrMove(sq(t, "e2"))
	got, _ = g.SelectOrMove(sq(t, "g1"))
	if diff := cmp.Diff(squares(t, "f3", "h3"), sortPositions(got)); diff != "" {
		t.Errorf("g1 destinations mismatch (-want +got):\n%s", diff)
	}

	// an unreachable square clears
	g.SelectOrMove(sq(t, "g5"))
	if st := g.GetState(); st.SelectedSquare != nil {
		t.Errorf("selected = %v after clicking an unreachable square", st.SelectedSquare)
	}

	// opponent pieces are not selectable
	if got, _ := g.SelectOrMove(sq(t, "e7")); got != nil {
		t.Errorf("selecting a black piece on white's turn returned %v", got)
	}

	g.SelectOrMove(sq(t, "e2"))
	if _, err := g.SelectOrMove(sq(t, "e4")); err != nil {
		t.Fatalf("move by selection error: %v", err)
	}
	st := g.GetState()
	if st.ToMove != Black || st.SelectedSquare != nil {
		t.Errorf("after move to move %s selected %v", st.ToMove, st.SelectedSquare)
	}
	if p := g.Board().PieceAt(sq(t, "e4")); p == nil || p.Type != Pawn {
		t.Errorf("e4 = %+v, want the white pawn", p)
	}
}

func TestIgnoredCommandsLeaveStateUnchanged(t *testing.T) {
	g := newTestGame(t, testSettings(60))
	play(t, g, "e2e4")
	before := g.GetState()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"illegal queen move", func() error { return g.MakeMove(sq(t, "d8"), sq(t, "d4"), "") }, ErrIllegalMove},
		{"wrong side", func() error { return g.MakeMove(sq(t, "d2"), sq(t, "d4"), "") }, ErrNotYourTurn},
		{"empty square", func() error { return g.MakeMove(sq(t, "d4"), sq(t, "d5"), "") }, ErrIllegalMove},
		{"off the board", func() error { return g.MakeMove(Pos(1, 4), Pos(-1, 4), "") }, ErrOutOfBounds},
		{"no pending promotion", func() error { return g.ChoosePromotion(Queen) }, ErrNoPromotionPending},
		{"select off the board", func() error {
			_, err := g.SelectOrMove(Pos(8, 0))
			return err
		}, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if !IsIgnorable(tt.want) {
				t.Errorf("%v should be ignorable", tt.want)
			}
			after := g.GetState()
			if diff := cmp.Diff(before, after, cmpopts.IgnoreUnexported(PendingPromotion{})); diff != "" {
				t.Errorf("state changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	g := newTestGame(t, testSettings(2))
	events := recordEvents(g)

	if !g.Tick() {
		t.Fatal("Tick() = false with white's clock running")
	}
	if st := g.GetState(); *st.Players.White.TimeLeft != 1 || st.Phase != PhaseWaitingForMove {
		t.Fatalf("after one tick: white %d phase %s", *st.Players.White.TimeLeft, st.Phase)
	}
	g.Tick()

	st := g.GetState()
	if st.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want gameOver", st.Phase)
	}
	want := GameStatus{
		Message:   "Bob (Black) wins by timeout!",
		IsTimeout: true,
		Winner:    colorPtr(Black),
		Outcome:   OutcomeTimeout,
	}
	if diff := cmp.Diff(want, st.Status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&Position{Row: 7, Col: 4}, st.DefeatedKing); diff != "" {
		t.Errorf("defeated king mismatch (-want +got):\n%s", diff)
	}
	if *st.Players.White.TimeLeft != 0 || *st.Players.Black.TimeLeft != 2 {
		t.Errorf("times = %d/%d, want 0/2", *st.Players.White.TimeLeft, *st.Players.Black.TimeLeft)
	}
	wantEvents := []EventType{EventClockTicked, EventClockTicked, EventGameEnded}
	if diff := cmp.Diff(wantEvents, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if g.Tick() {
		t.Error("Tick() = true after a timeout")
	}
	if err := g.MakeMove(sq(t, "e2"), sq(t, "e4"), ""); !errors.Is(err, ErrGameOver) {
		t.Errorf("MakeMove() after timeout error = %v, want ErrGameOver", err)
	}
}

func TestClockIsPerSideBudget(t *testing.T) {
	g := newTestGame(t, testSettings(10))
	g.Tick()
	g.Tick()
	play(t, g, "e2e4")
	g.Tick()
	play(t, g, "e7e5")

	st := g.GetState()
	if *st.Players.White.TimeLeft != 8 || *st.Players.Black.TimeLeft != 9 {
		t.Errorf("times = %d/%d, want 8/9", *st.Players.White.TimeLeft, *st.Players.Black.TimeLeft)
	}
	if *st.Clock.Active != White {
		t.Errorf("active = %s, want white", *st.Clock.Active)
	}
}

func TestUnlimitedGameNeverTicks(t *testing.T) {
	g := newTestGame(t, testSettings(0))
	if g.Tick() {
		t.Error("Tick() = true on an unlimited game")
	}
	st := g.GetState()
	if st.Players.White.TimeLeft != nil || st.Clock.Active != nil {
		t.Errorf("unlimited game reports clock %+v", st.Clock)
	}
}

func TestReset(t *testing.T) {
	g := newTestGame(t, testSettings(5))
	g.Tick()
	play(t, g, "e2e4", "d7d5", "e4d5")
	events := recordEvents(g)

	g.Reset()
	st := g.GetState()
	if diff := cmp.Diff(NewBoard().Grid(), st.Board); diff != "" {
		t.Errorf("board after reset mismatch (-want +got):\n%s", diff)
	}
	if st.ToMove != White || st.Phase != PhaseWaitingForMove || len(st.MoveHistory) != 0 {
		t.Errorf("reset state: to move %s phase %s history %d", st.ToMove, st.Phase, len(st.MoveHistory))
	}
	if len(st.CapturedPieces.White) != 0 || st.LastCapture != nil || st.LastMove != nil {
		t.Errorf("reset kept capture history: %+v", st.CapturedPieces)
	}
	if *st.Players.White.TimeLeft != 5 {
		t.Errorf("white time = %d, want 5", *st.Players.White.TimeLeft)
	}
	if diff := cmp.Diff([]EventType{EventGameReset}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestResetFromCustomPosition(t *testing.T) {
	s := testSettings(0)
	s.StartFEN = "4k3/8/8/8/8/8/8/R3K3 w - - 0 1"
	g := newTestGame(t, s)
	play(t, g, "a1a8")
	g.Reset()
	if p := g.Board().PieceAt(sq(t, "a1")); p == nil || p.Type != Rook {
		t.Errorf("a1 after reset = %+v, want the rook back", p)
	}
}

func TestRandomPlayInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for game := 0; game < 4; game++ {
		g := newTestGame(t, testSettings(0))
		count := g.Board().PieceCount()
		for ply := 0; ply < 150 && g.Phase() != PhaseGameOver; ply++ {
			st := g.GetState()
			moves := AllLegalMoves(g.Board(), st.ToMove)
			if len(moves) == 0 {
				t.Fatalf("game %d ply %d: no legal moves but phase %s", game, ply, st.Phase)
			}
			m := moves[rng.Intn(len(moves))]
			if err := g.MakeMove(m.From, m.To, Queen); err != nil {
				t.Fatalf("game %d ply %d: MakeMove(%+v) error: %v", game, ply, m, err)
			}

			b := g.Board()
			if n := b.PieceCount(); n > count {
				t.Fatalf("game %d ply %d: piece count rose from %d to %d", game, ply, count, n)
			} else {
				count = n
			}
			for _, c := range []Color{White, Black} {
				if _, ok := b.FindKing(c); !ok {
					t.Fatalf("game %d ply %d: %s king vanished", game, ply, c)
				}
			}
			status := g.Status()
			if status.IsCheckmate && status.IsStalemate {
				t.Fatalf("game %d ply %d: checkmate and stalemate at once", game, ply)
			}
		}
	}
}
