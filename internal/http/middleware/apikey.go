package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// APIKeyHeader carries the shared secret for mutating requests.
const APIKeyHeader = "X-API-Key"

// APIKeyConfig configures APIKey.
type APIKeyConfig struct {
	// Key is the expected secret. An empty Key lets every request through.
	Key string
	// Next skips the check when it returns true.
	Next func(c *fiber.Ctx) bool
}

// APIKey rejects requests whose X-API-Key header does not match cfg.Key
// with a 401 fiber.Error, leaving the response envelope to the app's
// ErrorHandler.
func APIKey(cfg APIKeyConfig) fiber.Handler {
	if cfg.Key == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	want := []byte(cfg.Key)
	return keyauth.New(keyauth.Config{
		Next:      cfg.Next,
		KeyLookup: "header:" + APIKeyHeader,
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(_ *fiber.Ctx, _ error) error {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing api key")
		},
	})
}
