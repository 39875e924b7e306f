package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/response"
	"github.com/gravadigital/civicpulse-api/internal/storage/objectstore"
)

// UploadHandler handles multipart image uploads
type UploadHandler struct {
	store *objectstore.Store
	log   *log.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(store *objectstore.Store) *UploadHandler {
	return &UploadHandler{
		store: store,
		log:   logger.Handler("upload"),
	}
}

// Upload handles POST /api/uploads. Accepts a single "file" form field
// and returns the stored object's URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.store == nil {
		response.Error(c, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	url, err := h.store.UploadImage(c.Request.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		if !isValidationError(err) {
			h.log.Error("Upload failed", "filename", fileHeader.Filename, "error", err)
		}
		writeServiceError(c, err, "Failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
