package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chessclock-backend/internal/middleware"
	"github.com/benbeisheim/chessclock-backend/internal/service"
	"github.com/benbeisheim/chessclock-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService         *service.GameService
	defaultClockSeconds int
	logger              *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, defaultClockSeconds int, logger *zap.Logger) *WebSocketController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketController{
		gameService:         gameService,
		defaultClockSeconds: defaultClockSeconds,
		logger:              logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	clientID, _ := c.Locals(middleware.ClientIDLocal).(string)
	if clientID == "" {
		wsc.logger.Warn("websocket connection without client id")
		c.Close()
		return
	}

	wsc.gameService.RegisterConnection(clientID, c)
	defer wsc.gameService.UnregisterConnection(clientID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.logger.Debug("websocket read ended", zap.String("client_id", clientID), zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		wsc.process(clientID, message)
	}
}

// process handles one text frame from clientID. Problems are reported back to
// that client alone as an error frame.
func (wsc *WebSocketController) process(clientID string, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		wsc.logger.Warn("websocket parse error", zap.String("client_id", clientID), zap.Error(err))
		wsc.gameService.SendError(clientID, "malformed message")
		return
	}
	if err := wsc.handleMessage(msg); err != nil {
		wsc.logger.Warn("websocket handle error",
			zap.String("client_id", clientID),
			zap.String("type", string(msg.Type)),
			zap.Error(err),
		)
		wsc.gameService.SendError(clientID, err.Error())
	}
}

// handleMessage applies a client command. The resulting state reaches every
// client, this one included, through the service broadcast.
func (wsc *WebSocketController) handleMessage(msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.MessageTypeNewGame:
		var p ws.NewGamePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err = wsc.gameService.NewGame(p.Settings(wsc.defaultClockSeconds))
	case ws.MessageTypeSelect:
		var p ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err = wsc.gameService.SelectSquare(p.Position())
	case ws.MessageTypeMove:
		var p ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err = wsc.gameService.HandleMove(p.From, p.To, p.Promotion)
	case ws.MessageTypePromote:
		var p ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err = wsc.gameService.ChoosePromotion(p.Piece)
	case ws.MessageTypeReset:
		_, err = wsc.gameService.Reset()
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return err
}
