package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeNotFound          = "not_found"
	CodeAlreadyExists     = "already_exists"
	CodeInvalidIdentifier = "invalid_identifier"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StoreAssetResponse is returned when an asset upload is accepted.
type StoreAssetResponse struct {
	Bucket string `json:"bucket"`
	Asset  string `json:"asset"`
	Size   int64  `json:"size"`
}

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, CodeInvalidIdentifier
	}
	switch domain.Kind(err) {
	case domain.ErrNotFound:
		return http.StatusNotFound, CodeNotFound
	case domain.ErrAlreadyExists:
		return http.StatusConflict, CodeAlreadyExists
	case domain.ErrInvalidIdentifier:
		return http.StatusBadRequest, CodeInvalidIdentifier
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondError logs err and writes it as an ErrorResponse.
func respondError(c echo.Context, err error) error {
	logger := logging.FromContext(c.Request().Context())
	status, code := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("storage request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		// Do not leak filesystem details to the client.
		message = domain.ErrInternal.Error()
	} else {
		logger.Warn("storage request rejected", "method", c.Request().Method, "path", c.Path(), "status", status, "error", err)
	}
	return c.JSON(status, ErrorResponse{Code: code, Message: message})
}
