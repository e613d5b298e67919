package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"datapost/internal/datapost"
	"datapost/internal/http/middleware"
	"datapost/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return s
}

// writeError writes a standardized JSON error response. message must be safe
// to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// First match wins; ErrFilenameRequired wraps ErrMalformedIdentifier so it
// is listed ahead of it.
var domainErrors = []errorMapping{
	{service.ErrFilenameRequired, fiber.StatusBadRequest, "MALFORMED_FILENAME", "filename is required"},
	{datapost.ErrMalformedIdentifier, fiber.StatusBadRequest, "MALFORMED_FILENAME", "filename must look like <name>.<type>"},
	{datapost.ErrUnknownType, fiber.StatusBadRequest, "UNKNOWN_TYPE", "unsupported file type"},
	{datapost.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "file not found"},
	{datapost.ErrAmbiguousMatch, fiber.StatusConflict, "AMBIGUOUS_MATCH", "filename matches more than one file"},
	{datapost.ErrDecode, fiber.StatusUnprocessableEntity, "DECODE_ERROR", "file content cannot be decoded"},
	{service.ErrStorageDisabled, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "media store is not configured"},
}

// writeServiceError translates errors returned by service.DataPostService.
// Store and media failures surface as INTERNAL_ERROR without details.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "invalid or missing api key")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
