// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chessclock-backend/internal/model"
	"github.com/benbeisheim/chessclock-backend/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoActiveGame = errors.New("no active game")

// Conn is the part of a websocket connection the manager writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type client struct {
	mu   sync.Mutex // websocket writes are not concurrency safe
	conn Conn
}

func (c *client) send(msg ws.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// GameManager owns the single game in progress, the goroutine that ticks its
// clock, and the websocket clients observing it.
type GameManager struct {
	mu           sync.RWMutex
	game         *model.Game
	stopClock    context.CancelFunc
	tickInterval time.Duration
	closed       bool

	// runMu guards the active run. Event callbacks take it while mu may be
	// held, so mu must never be taken under runMu.
	runMu    sync.Mutex
	activeID string
	realign  chan struct{}

	connMu      sync.RWMutex
	connections map[string]*client // clientID -> connection

	logger *zap.Logger
}

func NewGameManager(tickInterval time.Duration, logger *zap.Logger) *GameManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &GameManager{
		tickInterval: tickInterval,
		connections:  make(map[string]*client),
		logger:       logger,
	}
}

// NewGame replaces any game in progress.
func (gm *GameManager) NewGame(settings model.Settings) (*model.Game, error) {
	game, err := model.NewGame(uuid.New().String(), settings)
	if err != nil {
		return nil, err
	}
	game.Subscribe(gm.onEvent)

	gm.mu.Lock()
	if gm.stopClock != nil {
		gm.stopClock()
	}
	gm.game = game
	gm.stopClock = gm.startClock(game)
	gm.mu.Unlock()

	gm.logger.Info("game started",
		zap.String("game_id", game.ID),
		zap.String("player1", settings.Player1.Name),
		zap.String("player2", settings.Player2.Name),
		zap.String("first_mover", string(settings.FirstMover)),
		zap.Int("clock_seconds", settings.ClockSeconds),
	)
	return game, nil
}

func (gm *GameManager) GetGame() (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if gm.game == nil {
		return nil, ErrNoActiveGame
	}
	return gm.game, nil
}

// Reset restarts the current game and its clock goroutine, so no tick
// scheduled for the old position can land on the new one. The game itself is
// reset outside mu since its listeners write to every client.
func (gm *GameManager) Reset() (*model.Game, error) {
	gm.mu.Lock()
	game := gm.game
	if game == nil {
		gm.mu.Unlock()
		return nil, ErrNoActiveGame
	}
	if gm.stopClock != nil {
		gm.stopClock()
		gm.stopClock = nil
	}
	gm.mu.Unlock()

	game.Reset()

	gm.mu.Lock()
	if gm.game == game && gm.stopClock == nil && !gm.closed {
		gm.stopClock = gm.startClock(game)
	}
	gm.mu.Unlock()

	gm.logger.Info("game reset", zap.String("game_id", game.ID))
	return game, nil
}

// startClock must be called with mu held.
func (gm *GameManager) startClock(game *model.Game) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	realign := make(chan struct{}, 1)

	gm.runMu.Lock()
	gm.activeID = game.ID
	gm.realign = realign
	gm.runMu.Unlock()

	if game.Settings().ClockSeconds > 0 {
		go gm.runClock(ctx, game, realign)
	}
	return cancel
}

// runClock ticks game once per interval. The interval restarts whenever the
// move passes to the other side, so each side is charged from the moment its
// clock starts.
func (gm *GameManager) runClock(ctx context.Context, game *model.Game, realign <-chan struct{}) {
	ticker := time.NewTicker(gm.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-realign:
			ticker.Reset(gm.tickInterval)
		case <-ticker.C:
			select {
			case <-realign:
				// the side changed as this tick fired; it belongs to nobody
				ticker.Reset(gm.tickInterval)
				continue
			default:
			}

			// holding mu means a concurrent Reset either waits for this tick
			// or has already cancelled ctx
			gm.mu.RLock()
			if ctx.Err() != nil {
				gm.mu.RUnlock()
				return
			}
			ticked := game.Tick()
			gm.mu.RUnlock()

			if ticked {
				gm.BroadcastState()
			}
			if game.Phase() == model.PhaseGameOver {
				return
			}
		}
	}
}

func (gm *GameManager) onEvent(e model.Event) {
	gm.runMu.Lock()
	current := e.GameID == gm.activeID
	realign := gm.realign
	gm.runMu.Unlock()
	if !current {
		gm.logger.Debug("dropped event from replaced game", zap.String("game_id", e.GameID), zap.String("type", string(e.Type)))
		return
	}
	if e.Type == model.EventMoveMade || e.Type == model.EventGameReset {
		select {
		case realign <- struct{}{}:
		default:
		}
	}

	switch e.Type {
	case model.EventClockTicked:
		// too chatty to log; the state broadcast after the tick carries it
		return
	case model.EventMoveMade:
		gm.logger.Info("move made",
			zap.String("game_id", e.GameID),
			zap.String("color", string(e.Color)),
			zap.String("notation", e.Ply.Notation),
		)
	case model.EventGameEnded:
		gm.logger.Info("game ended",
			zap.String("game_id", e.GameID),
			zap.String("outcome", string(e.Status.Outcome)),
			zap.String("message", e.Status.Message),
		)
	default:
		gm.logger.Debug("game event", zap.String("game_id", e.GameID), zap.String("type", string(e.Type)))
	}

	msg, err := ws.NewMessage(ws.MessageTypeEvent, e)
	if err != nil {
		gm.logger.Error("failed to marshal event", zap.Error(err))
		return
	}
	gm.broadcast(msg)
}

func (gm *GameManager) RegisterConnection(clientID string, conn Conn) {
	gm.connMu.Lock()
	if old, exists := gm.connections[clientID]; exists {
		// the newest connection for a client wins
		old.conn.Close()
	}
	gm.connections[clientID] = &client{conn: conn}
	gm.connMu.Unlock()

	gm.logger.Info("registered connection", zap.String("client_id", clientID))
	if game, err := gm.GetGame(); err == nil {
		gm.sendState(clientID, game.GetState())
	}
}

// UnregisterConnection only removes conn if it is still the client's current one.
func (gm *GameManager) UnregisterConnection(clientID string, conn Conn) {
	gm.connMu.Lock()
	defer gm.connMu.Unlock()

	if c, exists := gm.connections[clientID]; exists && c.conn == conn {
		delete(gm.connections, clientID)
		gm.logger.Info("unregistered connection", zap.String("client_id", clientID))
	}
}

func (gm *GameManager) ConnectionCount() int {
	gm.connMu.RLock()
	defer gm.connMu.RUnlock()
	return len(gm.connections)
}

// BroadcastState sends the current game state to every client.
func (gm *GameManager) BroadcastState() {
	game, err := gm.GetGame()
	if err != nil {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, game.GetState())
	if err != nil {
		gm.logger.Error("failed to marshal state", zap.Error(err))
		return
	}
	gm.broadcast(msg)
}

func (gm *GameManager) sendState(clientID string, state model.GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		gm.logger.Error("failed to marshal state", zap.Error(err))
		return
	}
	gm.Send(clientID, msg)
}

// Send writes msg to a single client, if it is still connected.
func (gm *GameManager) Send(clientID string, msg ws.Message) {
	gm.connMu.RLock()
	c, ok := gm.connections[clientID]
	gm.connMu.RUnlock()
	if !ok {
		return
	}
	if err := c.send(msg); err != nil {
		gm.dropClient(clientID, c, err)
	}
}

func (gm *GameManager) broadcast(msg ws.Message) {
	// snapshot so writes happen without holding connMu
	gm.connMu.RLock()
	active := make(map[string]*client, len(gm.connections))
	for id, c := range gm.connections {
		active[id] = c
	}
	gm.connMu.RUnlock()

	for id, c := range active {
		if err := c.send(msg); err != nil {
			gm.dropClient(id, c, err)
		}
	}
}

func (gm *GameManager) dropClient(clientID string, c *client, cause error) {
	gm.logger.Warn("failed to send to client, dropping connection",
		zap.String("client_id", clientID),
		zap.Error(cause),
	)
	gm.connMu.Lock()
	if cur, ok := gm.connections[clientID]; ok && cur == c {
		delete(gm.connections, clientID)
	}
	gm.connMu.Unlock()
	c.conn.Close()
}

// Shutdown stops the clock goroutine and closes every client connection.
func (gm *GameManager) Shutdown() {
	gm.mu.Lock()
	gm.closed = true
	if gm.stopClock != nil {
		gm.stopClock()
		gm.stopClock = nil
	}
	gm.mu.Unlock()

	gm.connMu.Lock()
	defer gm.connMu.Unlock()
	for id, c := range gm.connections {
		c.conn.Close()
		delete(gm.connections, id)
	}
}
