package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"
)

const HeaderAPIKey = "X-API-Key"

// PublicAPIKey gates the unauthenticated routes. An empty key leaves them open.
func PublicAPIKey(key string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(c.Get(HeaderAPIKey)), []byte(key)) != 1 {
			return unauthorized(c)
		}
		return c.Next()
	}
}
