package handler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datapost/internal/datapost"
	"datapost/internal/http/middleware"
	"datapost/internal/service"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configure RegisterRoutes.
type Options struct {
	// APIKey guards mutating routes when non-empty.
	APIKey string
	// ExportExpiry is the lifetime of presigned export URLs.
	ExportExpiry time.Duration
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

const (
	actionRead   = "read_data_file"
	actionWrite  = "write_data_file"
	actionDelete = "delete_data_file"

	msgNoFilename = "ERROR: No file name has been passed"
	healthTimeout = 2 * time.Second
)

// RegisterRoutes attaches the health, metrics and file routes to app.
func RegisterRoutes(app *fiber.App, store Pinger, svc service.DataPostService, opts Options) {
	if opts.ExportExpiry <= 0 {
		opts.ExportExpiry = 15 * time.Minute
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())
	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/types", ListTypes(svc))

	mutating := middleware.APIKey(middleware.APIKeyConfig{Key: opts.APIKey})

	files := app.Group("/files")
	// HEAD is registered ahead of GET, which also answers HEAD in fiber.
	files.Head("/:filename", FileExists(svc))
	files.Get("/:filename", ReadFile(svc))
	files.Put("/:filename", mutating, WriteFile(svc))
	files.Delete("/:filename", mutating, DeleteFile(svc))
	files.Post("/:filename/export", mutating, ExportFile(svc, opts.ExportExpiry))

	app.Get("/ajax", middleware.APIKey(middleware.APIKeyConfig{
		Key:  opts.APIKey,
		Next: func(c *fiber.Ctx) bool { return c.Query("action") == actionRead },
	}), Action(svc))
}

// HealthCheck pings the record store.
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := store.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListTypes godoc
// @Summary  List registered file types
// @Produce  json
// @Success  200 {array} string
// @Router   /types [get]
func ListTypes(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Types())
	}
}

// ReadFile godoc
// @Summary  Read a file
// @Description Returns the raw content, or the decoded value as JSON with ?decode=true.
// @Param    filename path  string true  "file name, e.g. prices.json"
// @Param    decode   query bool   false "decode with the type's codec"
// @Success  200 {string} string
// @Failure  404 {object} errorPayload
// @Router   /files/{filename} [get]
func ReadFile(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := filenameParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}

		if c.QueryBool("decode") {
			doc, err := svc.Load(c.UserContext(), name)
			if err != nil {
				return writeServiceError(c, err)
			}
			v, err := doc.Load(c.UserContext())
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(v)
		}

		content, err := svc.ReadFile(c.UserContext(), name)
		if err != nil {
			return writeServiceError(c, err)
		}
		setContentType(c, svc.MediaType(name))
		return c.SendString(content)
	}
}

// WriteFile godoc
// @Summary  Create or overwrite a file
// @Accept   plain
// @Param    filename path string true "file name"
// @Success  204
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /files/{filename} [put]
func WriteFile(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := filenameParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := svc.WriteFile(c.UserContext(), name, string(c.Body())); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteFile godoc
// @Summary  Delete a file
// @Description Deleting a missing file succeeds.
// @Param    filename path string true "file name"
// @Success  204
// @Router   /files/{filename} [delete]
func DeleteFile(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := filenameParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := svc.Delete(c.UserContext(), name); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// FileExists answers HEAD with 200 or 404 and no body.
func FileExists(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := filenameParam(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		ok, err := svc.Exists(c.UserContext(), name)
		if err != nil {
			return writeServiceError(c, err)
		}
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// ExportFile godoc
// @Summary  Export a file to the media store
// @Produce  json
// @Param    filename path string true "file name"
// @Success  200 {object} service.ExportResult
// @Failure  503 {object} errorPayload
// @Router   /files/{filename}/export [post]
func ExportFile(svc service.DataPostService, expiry time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := filenameParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Export(c.UserContext(), name, expiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Action serves the query-string API used by existing frontends:
// /ajax?action=read_data_file|write_data_file|delete_data_file&filename=...&data=...
// Reads answer the raw content; writes and deletes answer an empty body.
// Requests missing a required parameter do nothing.
func Action(svc service.DataPostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		name := c.Query("filename")

		switch c.Query("action") {
		case actionRead:
			if name == "" {
				return c.SendString(msgNoFilename)
			}
			content, err := svc.ReadFile(ctx, name)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.SendString(content)

		case actionWrite:
			data, hasData := queryValue(c, "data")
			if name == "" || !hasData {
				return c.SendStatus(fiber.StatusOK)
			}
			if err := svc.WriteFile(ctx, name, data); err != nil {
				return writeServiceError(c, err)
			}
			return c.SendStatus(fiber.StatusOK)

		case actionDelete:
			if name == "" {
				return c.SendStatus(fiber.StatusOK)
			}
			if err := svc.Delete(ctx, name); err != nil {
				return writeServiceError(c, err)
			}
			return c.SendStatus(fiber.StatusOK)

		default:
			return writeError(c, fiber.StatusBadRequest, "UNKNOWN_ACTION", "unknown action")
		}
	}
}

// queryValue distinguishes an empty parameter from a missing one.
func queryValue(c *fiber.Ctx, key string) (string, bool) {
	args := c.Context().QueryArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

// filenameParam returns the :filename route parameter percent-decoded, so
// /files/caf%C3%A9.json names the same file as ?filename=café.json.
func filenameParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", datapost.ErrMalformedIdentifier, err)
	}
	return name, nil
}

// setContentType sends mediaType, adding a utf-8 charset when it has none.
func setContentType(c *fiber.Ctx, mediaType string) {
	if !strings.Contains(mediaType, "charset=") {
		mediaType += "; charset=utf-8"
	}
	c.Set(fiber.HeaderContentType, mediaType)
}
