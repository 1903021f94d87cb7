package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/voxeldragons/siteapi/internal/storage"
)

// UploadHandler accepts image uploads for the shop catalog.
type UploadHandler struct {
	store *storage.Store
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(store *storage.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload stores one multipart image and returns its public URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, errFile := c.FormFile("file")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	folder := strings.TrimSpace(c.PostForm("folder"))
	if folder == "" {
		folder = "general"
	}

	file, errOpen := fileHeader.Open()
	if errOpen != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upload failed"})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	url, errSave := h.store.Save(folder, fileHeader.Filename, mimeType, file)
	if errSave != nil {
		if errors.Is(errSave, storage.ErrUnsupportedFileType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSave.Error()})
			return
		}
		log.WithError(errSave).Error("image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	log.Infof("image uploaded: %s (%d bytes)", url, fileHeader.Size)
	c.JSON(http.StatusOK, gin.H{"url": url})
}
