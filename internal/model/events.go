package model

type EventType string

const (
	EventMoveMade         EventType = "moveMade"
	EventPieceCaptured    EventType = "pieceCaptured"
	EventPromotionPending EventType = "promotionPending"
	EventPiecePromoted    EventType = "piecePromoted"
	EventCheckDeclared    EventType = "checkDeclared"
	EventGameEnded        EventType = "gameEnded"
	EventClockTicked      EventType = "clockTicked"
	EventGameReset        EventType = "gameReset"
)

// Event is emitted by Game after a state change so that collaborators
// (sound, animation, network fan-out) can react without the engine knowing
// about them. Only the fields relevant to Type are set.
type Event struct {
	Type   EventType   `json:"type"`
	GameID string      `json:"gameId"`
	Ply    *Ply        `json:"ply,omitempty"`
	Piece  *Piece      `json:"piece,omitempty"`
	Square *Position   `json:"square,omitempty"`
	Color  Color       `json:"color,omitempty"`
	Status *GameStatus `json:"status,omitempty"`
	Clock  *ClockState `json:"clock,omitempty"`
}

// Listener receives events in emission order. It is called without the game
// lock held, so it may read the game state.
type Listener func(Event)
