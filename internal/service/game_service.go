package service

import (
	"fmt"

	"github.com/benbeisheim/chessclock-backend/internal/model"
	"github.com/benbeisheim/chessclock-backend/internal/ws"
	"go.uber.org/zap"
)

// GameService is the command surface controllers drive. Illegal commands are
// dropped here: the caller gets the unchanged state back and no error.
type GameService struct {
	gameManager *GameManager
	logger      *zap.Logger
}

func NewGameService(gameManager *GameManager, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{
		gameManager: gameManager,
		logger:      logger,
	}
}

func (gs *GameService) NewGame(settings model.Settings) (model.GameState, error) {
	game, err := gs.gameManager.NewGame(settings)
	if err != nil {
		return model.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}
	gs.gameManager.BroadcastState()
	return game.GetState(), nil
}

func (gs *GameService) GetGameState() (model.GameState, error) {
	game, err := gs.gameManager.GetGame()
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// SelectSquare drives the click-style select-or-move command.
func (gs *GameService) SelectSquare(at model.Position) (model.GameState, error) {
	return gs.command("select", func(g *model.Game) error {
		_, err := g.SelectOrMove(at)
		return err
	})
}

func (gs *GameService) HandleMove(from, to model.Position, promotion model.PieceType) (model.GameState, error) {
	return gs.command("move", func(g *model.Game) error {
		return g.MakeMove(from, to, promotion)
	})
}

func (gs *GameService) ChoosePromotion(piece model.PieceType) (model.GameState, error) {
	return gs.command("promote", func(g *model.Game) error {
		return g.ChoosePromotion(piece)
	})
}

func (gs *GameService) Reset() (model.GameState, error) {
	game, err := gs.gameManager.Reset()
	if err != nil {
		return model.GameState{}, err
	}
	gs.gameManager.BroadcastState()
	return game.GetState(), nil
}

func (gs *GameService) command(name string, apply func(*model.Game) error) (model.GameState, error) {
	game, err := gs.gameManager.GetGame()
	if err != nil {
		return model.GameState{}, err
	}
	if err := apply(game); err != nil {
		if !model.IsIgnorable(err) {
			return model.GameState{}, err
		}
		gs.logger.Debug("ignored command",
			zap.String("game_id", game.ID),
			zap.String("command", name),
			zap.Error(err),
		)
		return game.GetState(), nil
	}
	gs.gameManager.BroadcastState()
	return game.GetState(), nil
}

func (gs *GameService) RegisterConnection(clientID string, conn Conn) {
	gs.gameManager.RegisterConnection(clientID, conn)
}

func (gs *GameService) UnregisterConnection(clientID string, conn Conn) {
	gs.gameManager.UnregisterConnection(clientID, conn)
}

// SendError reports a protocol problem to one client only.
func (gs *GameService) SendError(clientID, text string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: text})
	if err != nil {
		return
	}
	gs.gameManager.Send(clientID, msg)
}
