package ws

import (
	"encoding/json"

	"github.com/benbeisheim/chessclock-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeNewGame MessageType = "newGame"
	MessageTypeSelect  MessageType = "select"
	MessageTypeMove    MessageType = "move"
	MessageTypePromote MessageType = "promote"
	MessageTypeReset   MessageType = "reset"

	// server -> client
	MessageTypeGameState MessageType = "gameState"
	MessageTypeEvent     MessageType = "event"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewGamePayload is model.Settings with an optional clock; a missing clock
// falls back to the server default while an explicit 0 means unlimited.
type NewGamePayload struct {
	Player1      model.Player `json:"player1"`
	Player2      model.Player `json:"player2"`
	FirstMover   model.Color  `json:"firstMover"`
	ClockSeconds *int         `json:"clockSeconds"`
	StartFEN     string       `json:"startFen,omitempty"`
}

func (p NewGamePayload) Settings(defaultClockSeconds int) model.Settings {
	s := model.Settings{
		Player1:      p.Player1,
		Player2:      p.Player2,
		FirstMover:   p.FirstMover,
		ClockSeconds: defaultClockSeconds,
		StartFEN:     p.StartFEN,
	}
	if p.ClockSeconds != nil {
		s.ClockSeconds = *p.ClockSeconds
	}
	if s.FirstMover == "" {
		s.FirstMover = model.White
	}
	return s
}

type SelectPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p SelectPayload) Position() model.Position {
	return model.Pos(p.Row, p.Col)
}

type MovePayload struct {
	From      model.Position  `json:"from"`
	To        model.Position  `json:"to"`
	Promotion model.PieceType `json:"promotion,omitempty"`
}

type PromotePayload struct {
	Piece model.PieceType `json:"piece"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into an envelope of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
