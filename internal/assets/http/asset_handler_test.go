package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/assets/http/dto"
	"github.com/allisson/assetvault/internal/assets/usecase/mocks"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	"github.com/allisson/assetvault/internal/httputil"
)

const (
	ownerAddress = "0x52908400098527886e0f7030069857d2e4169ee7"
	buyerAddress = "0xde709f2102306220921060314715629080e2fb77"
)

// setupTestHandler creates a test handler with a mocked use case.
func setupTestHandler(t *testing.T) (*AssetHandler, *mocks.MockAssetUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockAssetUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAssetHandler(mockUseCase, logger), mockUseCase
}

// createTestContext creates a test Gin context with a JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// createMultipartContext builds an upload request with the given form fields and
// an optional file part.
func createMultipartContext(
	t *testing.T,
	fields map[string]string,
	filename string,
	content []byte,
) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/v1/assets", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req

	return c, w
}

func validIngestFields() map[string]string {
	return map[string]string{
		"product_id":  "5",
		"owner":       ownerAddress,
		"title":       "Quarterly report",
		"description": "Q3 numbers",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var response httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestAssetHandler_IngestHandler(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		assetID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Ingest", mock.Anything, mock.MatchedBy(func(in assetsDomain.IngestInput) bool {
			return string(in.Data) == "0123456789" &&
				in.Filename == "report.txt" &&
				in.ProductID == "5" &&
				in.Owner == ownerAddress &&
				in.Title == "Quarterly report" &&
				in.Description == "Q3 numbers"
		})).Return(&assetsDomain.IngestResult{
			AssetID:   assetID,
			ContentID: "nillion://assets/" + assetID.String(),
			BlobURL:   "mem://encrypted-assets/" + assetID.String() + "/report.txt.enc",
			Success:   true,
			Message:   "asset stored",
		}, nil).Once()

		c, w := createMultipartContext(t, validIngestFields(), "report.txt", []byte("0123456789"))
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.IngestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Equal(t, assetID.String(), response.AssetID)
		assert.Equal(t, "nillion://assets/"+assetID.String(), response.ContentID)
		assert.NotEmpty(t, response.BlobURL)
		assert.Empty(t, response.Error)
	})

	t.Run("Success_DegradedAccepted", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		assetID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Ingest", mock.Anything, mock.Anything).Return(&assetsDomain.IngestResult{
			AssetID:        assetID,
			ContentID:      "nillion://assets/" + assetID.String(),
			Success:        false,
			Error:          "blob transfer failed",
			RetryScheduled: true,
		}, nil).Once()

		c, w := createMultipartContext(t, validIngestFields(), "report.txt", []byte("data"))
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		var response dto.IngestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Success)
		assert.Equal(t, "blob transfer failed", response.Error)
		assert.Equal(t, "nillion://assets/"+assetID.String(), response.ContentID)
		assert.True(t, response.RetryScheduled)
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createMultipartContext(t, validIngestFields(), "", nil)
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidOwner", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		fields := validIngestFields()
		fields["owner"] = "not-an-address"

		c, w := createMultipartContext(t, fields, "report.txt", []byte("data"))
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "owner")
	})

	t.Run("Error_TooLarge", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Ingest", mock.Anything, mock.Anything).
			Return(nil, cryptoDomain.ErrPlaintextTooLarge).Once()

		c, w := createMultipartContext(t, validIngestFields(), "big.bin", []byte("payload"))
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("Error_BodyLimitExceeded", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createMultipartContext(t, validIngestFields(), "big.bin", bytes.Repeat([]byte("x"), 4096))
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 512)
		handler.IngestHandler(c)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestAssetHandler_handleBodyError(t *testing.T) {
	t.Run("WrappedMaxBytesError", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		handler.handleBodyError(c, fmt.Errorf("file is required: %w", &http.MaxBytesError{Limit: 512}))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("MatchingMessageIsNotALimit", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		handler.handleBodyError(c, errors.New("upstream said: request body too large"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAssetHandler_DownloadHandler(t *testing.T) {
	contentID := "nillion://assets/" + uuid.Must(uuid.NewV7()).String()

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		plaintext := []byte("0123456789")

		mockUseCase.On("Download", mock.Anything, assetsDomain.DownloadInput{
			ContentID: contentID,
			Requester: buyerAddress,
		}).Return(&assetsDomain.DownloadResult{
			Plaintext: plaintext,
			MimeType:  "text/plain; charset=utf-8",
			Filename:  "Quarterly report.txt",
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/assets/download", dto.DownloadRequest{
			ContentID:        contentID,
			RequesterAddress: buyerAddress,
		})
		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0123456789", w.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Quarterly report.txt"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, make([]byte, 10), plaintext, "plaintext must be zeroed after the response")
	})

	t.Run("Success_ProductOverride", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Download", mock.Anything, assetsDomain.DownloadInput{
			ContentID: contentID,
			Requester: buyerAddress,
			ProductID: "9",
		}).Return(&assetsDomain.DownloadResult{
			Plaintext: []byte("x"),
			MimeType:  "application/octet-stream",
			Filename:  "asset.bin",
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/assets/download", dto.DownloadRequest{
			ContentID:        contentID,
			RequesterAddress: buyerAddress,
			ProductID:        "9",
		})
		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/assets/download", bytes.NewBufferString("{"))
		c.Request.Header.Set("Content-Type", "application/json")
		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidRequester", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/assets/download", dto.DownloadRequest{
			ContentID:        contentID,
			RequesterAddress: "0x1",
		})
		handler.DownloadHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	errorCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Error_NotPurchased", assetsDomain.ErrUnauthorized, http.StatusForbidden},
		{"Error_NotFound", assetsDomain.ErrAssetNotFound, http.StatusNotFound},
		{"Error_PlaceholderProduct", assetsDomain.ErrInvalidVerificationTarget, http.StatusBadRequest},
		{"Error_LedgerUnavailable", assetsDomain.ErrVerificationUnavailable, http.StatusServiceUnavailable},
		{"Error_Integrity", cryptoDomain.ErrIntegrity, http.StatusBadGateway},
		{"Error_Transfer", assetsDomain.ErrTransfer, http.StatusBadGateway},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			handler, mockUseCase := setupTestHandler(t)

			mockUseCase.On("Download", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			c, w := createTestContext(http.MethodPost, "/v1/assets/download", dto.DownloadRequest{
				ContentID:        contentID,
				RequesterAddress: buyerAddress,
			})
			handler.DownloadHandler(c)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Empty(t, w.Header().Get("Content-Disposition"))
		})
	}
}

func TestAssetHandler_ChatHandler(t *testing.T) {
	contentID := "nillion://assets/" + uuid.Must(uuid.NewV7()).String()

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Chat", mock.Anything, assetsDomain.ChatInput{
			ContentID: contentID,
			Message:   "summarize",
		}).Return(&assetsDomain.ChatResult{Response: "It is a report."}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/assets/chat", dto.ChatRequest{
			ContentID: contentID,
			Message:   "summarize",
		})
		handler.ChatHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"response":"It is a report."}`, w.Body.String())
	})

	t.Run("Error_EmptyMessage", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/assets/chat", dto.ChatRequest{ContentID: contentID})
		handler.ChatHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_AnalyzerUnavailable", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Chat", mock.Anything, mock.Anything).
			Return(nil, assetsDomain.ErrAnalyzerUnavailable).Once()

		c, w := createTestContext(http.MethodPost, "/v1/assets/chat", dto.ChatRequest{
			ContentID: contentID,
			Message:   "summarize",
		})
		handler.ChatHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAssetHandler_GetHandler(t *testing.T) {
	assetID := uuid.Must(uuid.NewV7())
	contentID := "nillion://assets/" + assetID.String()
	now := time.Now().UTC()

	t.Run("Success_EncodedContentID", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		asset := &assetsDomain.Asset{
			ID:          assetID,
			ProductID:   "5",
			Owner:       ownerAddress,
			Title:       "Quarterly report",
			Description: "Q3 numbers",
			BlobURL:     "mem://encrypted-assets/x.enc",
			MimeType:    "application/pdf",
			FileSize:    2048,
			Analytics:   assetsDomain.Analytics{TotalChats: 2, TotalDownloads: 3, LastAccessedAt: &now},
			CreatedAt:   now,
		}
		mockUseCase.On("GetMetadata", mock.Anything, contentID).Return(asset, nil).Once()
		mockUseCase.On("ContentID", asset).Return(contentID).Once()

		encoded := url.PathEscape(contentID)
		c, w := createTestContext(http.MethodGet, "/v1/assets/"+encoded, nil)
		c.Params = gin.Params{{Key: "content_id", Value: "/" + encoded}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.AssetResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, assetID.String(), response.AssetID)
		assert.Equal(t, contentID, response.ContentID)
		assert.Equal(t, "5", response.ProductID)
		assert.Equal(t, int64(2048), response.FileSize)
		assert.Equal(t, int64(2), response.Analytics.TotalChats)
		assert.Equal(t, int64(3), response.Analytics.TotalDownloads)
		assert.NotContains(t, w.Body.String(), "wrapped_key")
		assert.NotContains(t, w.Body.String(), "mem://")
	})

	t.Run("Error_Malformed", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("GetMetadata", mock.Anything, "garbage").
			Return(nil, assetsDomain.ErrAssetNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/assets/garbage", nil)
		c.Params = gin.Params{{Key: "content_id", Value: "/garbage"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/assets/", nil)
		c.Params = gin.Params{{Key: "content_id", Value: "/"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAssetHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		assets := []*assetsDomain.Asset{
			{ID: uuid.Must(uuid.NewV7()), Owner: ownerAddress, Title: "b"},
			{ID: uuid.Must(uuid.NewV7()), Owner: ownerAddress, Title: "a"},
		}
		mockUseCase.On("ListByOwner", mock.Anything, ownerAddress, 10, 2).Return(assets, nil).Once()
		mockUseCase.On("ContentID", mock.Anything).Return("nillion://assets/x").Twice()

		c, w := createTestContext(http.MethodGet, "/v1/assets?owner="+ownerAddress+"&offset=10&limit=2", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListAssetsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, "b", response.Data[0].Title)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("ListByOwner", mock.Anything, ownerAddress, 0, 50).
			Return([]*assetsDomain.Asset{}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/assets?owner="+ownerAddress, nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/assets?owner="+ownerAddress+"&limit=500", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MissingOwner", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/assets", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
