package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDLocal  = "clientID"
)

// EnsureClientID tags every request with a client ID taken from the
// X-Client-ID header or the clientId query parameter. Clients that send
// neither get a fresh one, echoed back in the response header.
func EnsureClientID(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		if c.Locals(ClientIDLocal) != nil {
			return c.Next()
		}

		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query("clientId")
		}
		if clientID == "" {
			clientID = uuid.New().String()
			logger.Debug("assigned client id", zap.String("client_id", clientID), zap.String("path", c.Path()))
		}

		c.Locals(ClientIDLocal, clientID)
		c.Set(ClientIDHeader, clientID)
		return c.Next()
	}
}
