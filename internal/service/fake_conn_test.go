package service

import (
	"errors"
	"sync"

	"github.com/benbeisheim/chessclock-backend/internal/model"
	"github.com/benbeisheim/chessclock-backend/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
	failing  bool

	// when set, every write announces itself on writing and then waits for release
	writing chan struct{}
	release chan struct{}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.release != nil {
		c.writing <- struct{}{}
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) types() []ws.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ws.MessageType, 0, len(c.messages))
	for _, m := range c.messages {
		out = append(out, m.Type)
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

func testSettings(clockSeconds int) model.Settings {
	return model.Settings{
		Player1:      model.Player{Name: "Alice", Color: model.White},
		Player2:      model.Player{Name: "Bob", Color: model.Black},
		FirstMover:   model.White,
		ClockSeconds: clockSeconds,
	}
}
