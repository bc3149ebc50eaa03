package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdusco/shorty/internal/db"
	"github.com/abdusco/shorty/internal/handler"
	"github.com/abdusco/shorty/internal/link"
	"github.com/abdusco/shorty/internal/logger"
	"github.com/abdusco/shorty/internal/metrics"
	"github.com/abdusco/shorty/internal/repo"
	"github.com/abdusco/shorty/web"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

var (
	version   = "1.0"
	buildTime = "unknown"
)

type Config struct {
	Host        string
	Port        string
	DatabaseURL string
	LogLevel    string
	Debug       bool
}

func newConfigFromEnv() (Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		Host:        cmp.Or(os.Getenv("HOST"), "localhost"),
		Port:        cmp.Or(os.Getenv("PORT"), "3001"),
		DatabaseURL: cmp.Or(os.Getenv("DATABASE_URL"), "shorty.db"),
		LogLevel:    cmp.Or(os.Getenv("LOG_LEVEL"), "info"),
		Debug:       os.Getenv("DEBUG") == "1",
	}

	return cfg, nil
}

func main() {
	cfg, err := newConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration from environment")
	}

	if err := logger.Configure(cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("failed to parse log level")
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("debug", cfg.Debug).
		Msg("current configuration")

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run(ctx context.Context, cfg Config) error {
	log.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Msg("starting application")

	dbInstance, err := db.Init(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbInstance.Close()

	metrics.Init()

	e := newServer(dbInstance)
	defer e.Close()

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	log.Info().Str("address", addr).Msg("server starting")

	runServer(ctx, e, addr)

	return nil
}

func newServer(dbInstance *db.DB) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler

	e.Use(logger.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	linksRepo := repo.NewLinksRepo(dbInstance)
	linkService := link.NewService(linksRepo)

	healthHandler := handler.NewHealthHandler(linkService, version)
	e.GET("/healthz", healthHandler.Healthz)

	linkHandler := handler.NewLinkHandler(linkService)
	api := e.Group("/api")
	api.POST("/apilinks", linkHandler.CreateLink)
	api.GET("/apilinks", linkHandler.ListLinks)
	api.GET("/apilinks/:code", linkHandler.GetLink)
	api.DELETE("/apilinks/:code", linkHandler.DeleteLink)
	api.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	dashboardHandler := handler.NewDashboardHandler(web.FS)
	e.GET("/", dashboardHandler.ServeDashboard)
	e.GET("/code/:code", dashboardHandler.ServeStats)

	// Parameterized route (must be last)
	e.GET("/:code", linkHandler.Redirect)

	return e
}

func runServer(ctx context.Context, e *echo.Echo, addr string) {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(addr)
	}()

	// Wait for context cancellation (Ctrl+C or SIGTERM)
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
}

func customErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Int("code", code).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Err(err).
		Msg("http error")

	if c.Response().Committed {
		return
	}

	if !strings.HasPrefix(c.Request().URL.Path, "/api/") && code == http.StatusNotFound {
		c.String(code, "Not found")
		return
	}

	c.JSON(code, map[string]any{
		"error": message,
	})
}
