package handlers

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/binstore/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator sharing the domain identifier rules.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: domain.Validator()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// BucketRequest addresses a single bucket.
type BucketRequest struct {
	Bucket string `validate:"safesegment"`
}

// CreateBucketRequest defines the DTO for the bucket creation endpoint.
type CreateBucketRequest struct {
	Bucket string `validate:"safesegment"`
	Force  bool
}

// GetAssetRequest defines the DTO for the asset download endpoint.
type GetAssetRequest struct {
	Bucket                string `validate:"safesegment"`
	Asset                 string `validate:"safesegment"`
	SetContentDisposition bool
}

// StoreAssetRequest defines the DTO for the asset upload endpoints.
type StoreAssetRequest struct {
	Bucket                  string `validate:"safesegment"`
	Asset                   string `validate:"safesegment"`
	CreateBucketIfNotExists bool
}

// pathParam returns the decoded value of a path parameter. Echo routes on
// the raw path, and hands out still-escaped segments, only when the request
// carries a RawPath; otherwise the value is already decoded and must not be
// decoded again.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}
