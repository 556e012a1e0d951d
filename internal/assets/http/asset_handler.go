// Package http provides HTTP handlers for asset ingestion, gated download, chat
// and metadata lookup.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/assetvault/internal/assets/http/dto"
	assetsUseCase "github.com/allisson/assetvault/internal/assets/usecase"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/httputil"
	customValidation "github.com/allisson/assetvault/internal/validation"
)

// AssetHandler handles HTTP requests for the asset pipeline.
type AssetHandler struct {
	assetUseCase assetsUseCase.AssetUseCase
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler(assetUseCase assetsUseCase.AssetUseCase, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetUseCase: assetUseCase,
		logger:       logger,
	}
}

// IngestHandler encrypts and stores an uploaded file.
// POST /v1/assets (multipart: file, product_id, owner, title, description).
// Returns 201 Created, or 202 Accepted when the record was stored but the blob
// upload did not complete.
func (h *AssetHandler) IngestHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleBodyError(c, fmt.Errorf("file is required: %w", err))
		return
	}

	req := dto.IngestRequest{
		ProductID:   c.PostForm("product_id"),
		Owner:       c.PostForm("owner"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleBodyError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleBodyError(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}
	defer cryptoDomain.Zero(data)

	input := req.ToInput(data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	result, err := h.assetUseCase.Ingest(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.MapIngestResultToResponse(result))
}

// DownloadHandler decrypts an asset for a requester who owns or purchased it.
// POST /v1/assets/download. SECURITY: plaintext is zeroed after the response is written.
func (h *AssetHandler) DownloadHandler(c *gin.Context) {
	var req dto.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.assetUseCase.Download(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(result.Plaintext)

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.MimeType, result.Plaintext)
}

// ChatHandler answers a question about an asset's content.
// POST /v1/assets/chat.
func (h *AssetHandler) ChatHandler(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.assetUseCase.Chat(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{Response: result.Response})
}

// GetHandler returns the public metadata of an asset.
// GET /v1/assets/*content_id (the content identifier may be URL-encoded).
func (h *AssetHandler) GetHandler(c *gin.Context) {
	contentID, err := url.PathUnescape(strings.TrimPrefix(c.Param("content_id"), "/"))
	if err != nil || contentID == "" {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid content identifier"), h.logger)
		return
	}

	asset, err := h.assetUseCase.GetMetadata(c.Request.Context(), contentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssetToResponse(asset, h.assetUseCase.ContentID(asset)))
}

// ListHandler lists a creator's assets, newest first.
// GET /v1/assets?owner=0x...&offset=0&limit=50.
func (h *AssetHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	req := dto.ListAssetsRequest{Owner: c.Query("owner")}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	assets, err := h.assetUseCase.ListByOwner(c.Request.Context(), req.Owner, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssetsToListResponse(assets, h.assetUseCase.ContentID))
}

// handleBodyError renders multipart failures, mapping an exceeded body limit to 413.
func (h *AssetHandler) handleBodyError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrTooLarge, "request body too large"), h.logger)
		return
	}
	httputil.HandleBadRequestGin(c, err, h.logger)
}
