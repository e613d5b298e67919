package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"datapost/internal/logging"
)

// Logger logs one JSON line per request: request_id (from RequestID), method,
// path, status and latency in milliseconds. 5xx responses log at error
// level and 4xx at warn.
func Logger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		level := "info"
		switch {
		case status >= fiber.StatusInternalServerError:
			level = "error"
		case status >= fiber.StatusBadRequest:
			level = "warn"
		}

		log.Log(level, "http_request", map[string]any{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		})
		return err
	}
}

// LoggerWithWriter is Logger writing to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}
