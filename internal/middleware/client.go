package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDLocal  = "clientID"
)

// EnsureClientID identifies the caller from the X-Client-ID header or the
// clientId query parameter. Anonymous callers get a fresh id, echoed back in
// the response header so they can reuse it to stop their own searches.
func EnsureClientID() fiber.Handler {
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
		}

		c.Locals(ClientIDLocal, clientID)
		c.Set(ClientIDHeader, clientID)
		return c.Next()
	}
}

func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientIDLocal).(string)
	return id
}
