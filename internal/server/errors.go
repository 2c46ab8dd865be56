package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/binstore/internal/handlers"
	"github.com/nfrund/binstore/internal/logging"
)

// setupErrorHandling installs an HTTP error handler that renders errors as
// JSON and logs unexpected ones together with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, handlers.ErrorResponse{Code: codeForStatus(he.Code), Message: msg})
			return
		}

		logging.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
			slog.String("error", err.Error()),
			slog.String("method", c.Request().Method),
			slog.String("uri", c.Request().RequestURI),
			slog.String("stack_trace", string(debug.Stack())),
		)
		_ = c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Code:    handlers.CodeInternal,
			Message: http.StatusText(http.StatusInternalServerError),
		})
	}
}

// codeForStatus derives an error code from an HTTP status, e.g. 405 becomes
// "method_not_allowed".
func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return handlers.CodeNotFound
	case http.StatusInternalServerError:
		return handlers.CodeInternal
	}
	text := http.StatusText(status)
	if text == "" {
		if status >= http.StatusInternalServerError {
			return handlers.CodeInternal
		}
		return handlers.CodeBadRequest
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
