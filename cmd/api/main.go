package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"datapost/docs"
	"datapost/internal/app"
	"datapost/internal/config"
	handlers "datapost/internal/http/handler"
	"datapost/internal/http/middleware"
	"datapost/internal/logging"
	"datapost/internal/otel"
)

// @title DataPost API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey ApiKey
// @in header
// @name X-API-Key
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location())
	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "failed to initialize tracing", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		fatal(log, "failed to initialize datapost", err)
	}
	defer a.Close()

	prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(log, "failed to register metrics", err)
	}

	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	server.Use(otelfiber.Middleware())
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(log))
	server.Use(prom.Handler())

	handlers.RegisterRoutes(server, a.Pinger, a.Service, handlers.Options{
		APIKey:       cfg.APIKey,
		ExportExpiry: cfg.DataPost.ExportExpiry,
		Gatherer:     prometheus.DefaultGatherer,
	})

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.ShutdownWithContext(sctx)
	}()

	addr := ":" + cfg.Port
	log.Info("server listening", map[string]any{"component": "http", "addr": addr})
	if err := server.Listen(addr); err != nil {
		fatal(log, "failed to start server", err)
	}
}

func fatal(log *logging.Logger, msg string, err error) {
	log.Error(msg, err, map[string]any{"component": "main"})
	os.Exit(1)
}
