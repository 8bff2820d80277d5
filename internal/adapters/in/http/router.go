package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"campusdash/internal/adapters/in/http/api"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 10 * time.Second

type RouterConfig struct {
	JWTSecret  []byte
	WebhookKey string
	Logger     *slog.Logger
}

// NewEcho assembles the HTTP surface: health check, swagger UI, the token-guarded public
// API and the key-guarded payment webhook. Both API groups validate against the
// embedded OpenAPI document.
func NewEcho(server *Server, cfg RouterConfig) (*echo.Echo, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.WebhookKey == "" {
		return nil, errors.New("webhook key is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = api.RegisterSwaggerDoc(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	e.HTTPErrorHandler = ErrorHandler(logger.With("component", "http"))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	public := e.Group("/api/v1", BearerAuth(cfg.JWTSecret), validator)
	api.RegisterHandlersWithBaseURL(public, server, "")

	webhooks := e.Group("/internal/v1", WebhookKeyAuth(cfg.WebhookKey), validator)
	api.RegisterWebhookHandlersWithBaseURL(webhooks, server, "")

	return e, nil
}

// Serve runs e on addr until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		e.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
