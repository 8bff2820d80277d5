package http

import (
	"errors"
	"log/slog"
	"net/http"

	"campusdash/internal/adapters/in/http/api"
	"campusdash/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrFailedPrecondition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrConcurrentModification):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every handler error as api.Error. Internal failures are
// logged and hidden behind a generic message.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		code := StatusFor(err)
		message := err.Error()

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}

		switch code {
		case http.StatusInternalServerError:
			logger.Error("request failed",
				"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
			message = http.StatusText(code)
		case http.StatusServiceUnavailable:
			ctx.Response().Header().Set("Retry-After", "1")
		}

		if err = ctx.JSON(code, api.Error{Code: code, Message: message}); err != nil {
			logger.Error("write error response", "error", err)
		}
	}
}
