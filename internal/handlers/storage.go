package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/filestore"
	"github.com/nfrund/binstore/internal/logging"
)

// contentPart is the multipart form field carrying an uploaded asset.
const contentPart = "content"

// errMissingContent is returned for multipart uploads without a content part.
var errMissingContent = errors.New("multipart upload has no \"" + contentPart + "\" part")

// StorageHandler serves the bucket and asset API.
type StorageHandler struct {
	service filestore.Service
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(service filestore.Service) *StorageHandler {
	return &StorageHandler{service: service}
}

// Register mounts the storage routes on g.
func (h *StorageHandler) Register(g *echo.Group) {
	g.GET("/healthz", Health)
	g.GET("/list", h.ListBuckets)
	g.PUT("/bucket/:bucket", h.CreateBucket)
	g.GET("/bucket/:bucket/list", h.ListAssets)
	g.GET("/bucket/:bucket/asset/:asset", h.GetAsset)
	g.PUT("/bucket/:bucket/asset/:asset", h.StoreAsset)
	g.POST("/bucket/:bucket/asset/:asset", h.OverwriteAsset)
}

// GetAsset streams an asset's content.
func (h *StorageHandler) GetAsset(c echo.Context) error {
	ctx := c.Request().Context()

	req := GetAssetRequest{Bucket: pathParam(c, "bucket"), Asset: pathParam(c, "asset")}
	if err := echo.QueryParamsBinder(c).Bool("setContentDisposition", &req.SetContentDisposition).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: "Invalid query parameters."})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, domain.InvalidIdentifier(req.Bucket, req.Asset, err))
	}

	logging.FromContext(ctx).Info("get asset", "bucket", req.Bucket, "asset", req.Asset)
	content, err := h.service.GetAsset(ctx, req.Bucket, req.Asset)
	if err != nil {
		return respondError(c, err)
	}
	defer content.Close()

	if req.SetContentDisposition {
		c.Response().Header().Set(echo.HeaderContentDisposition, attachmentDisposition(req.Asset))
	}
	return c.Stream(http.StatusOK, contentTypeFor(req.Asset), content)
}

// StoreAsset stores a new asset and refuses to replace an existing one.
func (h *StorageHandler) StoreAsset(c echo.Context) error {
	return h.storeAsset(c, false)
}

// OverwriteAsset stores an asset, replacing any previous content.
func (h *StorageHandler) OverwriteAsset(c echo.Context) error {
	return h.storeAsset(c, true)
}

func (h *StorageHandler) storeAsset(c echo.Context, override bool) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	req := StoreAssetRequest{Bucket: pathParam(c, "bucket"), Asset: pathParam(c, "asset")}
	if err := echo.QueryParamsBinder(c).Bool("createBucketIfNotExists", &req.CreateBucketIfNotExists).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: "Invalid query parameters."})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, domain.InvalidIdentifier(req.Bucket, req.Asset, err))
	}

	body, err := uploadBody(c)
	if err != nil {
		logger.Warn("unreadable upload", "bucket", req.Bucket, "asset", req.Asset, "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: err.Error()})
	}
	defer body.Close()

	logger.Info("store asset",
		"bucket", req.Bucket,
		"asset", req.Asset,
		"createBucketIfNotExists", req.CreateBucketIfNotExists,
		"override", override)

	n, err := h.service.StoreAsset(ctx, req.Bucket, req.Asset, body, req.CreateBucketIfNotExists, override)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, StoreAssetResponse{Bucket: req.Bucket, Asset: req.Asset, Size: n})
}

// CreateBucket creates a bucket. With force=true an existing bucket is accepted.
func (h *StorageHandler) CreateBucket(c echo.Context) error {
	ctx := c.Request().Context()

	req := CreateBucketRequest{Bucket: pathParam(c, "bucket")}
	if err := echo.QueryParamsBinder(c).Bool("force", &req.Force).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: "Invalid query parameters."})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, domain.InvalidIdentifier(req.Bucket, "", err))
	}

	logging.FromContext(ctx).Info("create bucket", "bucket", req.Bucket, "force", req.Force)
	if err := h.service.CreateBucket(ctx, req.Bucket, req.Force); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

// ListBuckets returns the identifiers of every bucket.
func (h *StorageHandler) ListBuckets(c echo.Context) error {
	buckets, err := h.service.GetBuckets(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, buckets)
}

// ListAssets returns the identifiers of every asset in a bucket.
func (h *StorageHandler) ListAssets(c echo.Context) error {
	req := BucketRequest{Bucket: pathParam(c, "bucket")}
	if err := c.Validate(&req); err != nil {
		return respondError(c, domain.InvalidIdentifier(req.Bucket, "", err))
	}

	assets, err := h.service.GetBucketList(c.Request().Context(), req.Bucket)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, assets)
}

// Health reports that the server is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// uploadBody returns the uploaded asset content without buffering it. A
// multipart/form-data request is scanned for its content part; any other
// request body is taken as the content itself.
func uploadBody(c echo.Context) (io.ReadCloser, error) {
	r := c.Request()
	if !strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return r.Body, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingContent
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == contentPart {
			return part, nil
		}
		_ = part.Close()
	}
}
