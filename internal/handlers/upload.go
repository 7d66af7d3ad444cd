package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"afribase-messaging/internal/storage"
)

// maxUploadBytes caps image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// UploadHandler accepts image attachments and hands back the object reference
// to embed in an image message.
type UploadHandler struct {
	uploader storage.Uploader
}

// NewUploadHandler builds an UploadHandler.
func NewUploadHandler(uploader storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// UploadImage stores a multipart image and returns its durable reference.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("messages/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
	url, err := h.uploader.Upload(c.Request.Context(), objectKey, contentType, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"object_ref":   url,
		"content_type": contentType,
	})
}
