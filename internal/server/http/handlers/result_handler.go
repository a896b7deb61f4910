package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/server/http/dto"
	"github.com/chanikul/edenclinic/internal/usecase"
)

const maxResultUpload = 32 << 20

// ResultHandler serves lab result management and downloads. Admin routes
// manage results; the download route is shared, with patients restricted
// to their own ready results.
type ResultHandler struct {
	results *usecase.ResultUseCase
}

// NewResultHandler creates ResultHandler.
func NewResultHandler(results *usecase.ResultUseCase) *ResultHandler {
	return &ResultHandler{results: results}
}

// Create handles POST /api/admin/test-results.
func (h *ResultHandler) Create(c *gin.Context) {
	var req dto.CreateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID <= 0 || req.BloodTestID <= 0 {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.results.Create(c.Request.Context(), CurrentAdmin(c), req.OrderID, req.BloodTestID, req.ClientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromResult(result))
}

// Get handles GET /api/test-results/:id.
func (h *ResultHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.results.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromResult(result))
}

// Update handles PATCH /api/test-results/:id. The only supported change
// is releasing the result to the patient.
func (h *ResultHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if !strings.EqualFold(req.Status, string(model.ResultStatusReady)) {
		writeError(c, http.StatusBadRequest, "status must be ready")
		return
	}

	result, err := h.results.MarkReady(c.Request.Context(), CurrentAdmin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromResult(result))
}

// Delete handles DELETE /api/test-results/:id.
func (h *ResultHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.results.Delete(c.Request.Context(), CurrentAdmin(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadFile handles POST /api/admin/test-results/:id/file (multipart,
// field "file").
func (h *ResultHandler) UploadFile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxResultUpload); err != nil {
		writeError(c, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	result, err := h.results.UploadFile(c.Request.Context(), CurrentAdmin(c), id, header.Filename, contentType, file, header.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromResult(result))
}

// Download handles GET /api/test-results/download?id=. Admin sessions may
// fetch any result; patient sessions only their own.
func (h *ResultHandler) Download(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}

	var requester *int64
	if CurrentAdmin(c) == nil {
		client := CurrentClient(c)
		if client == nil {
			writeError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		requester = &client.ID
	}

	url, err := h.results.DownloadURL(c.Request.Context(), id, requester)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
