package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/developia-II/catalog-api/utils"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	uploadTimeout = time.Minute
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type UploadHandler struct {
	base
	Uploader ImageUploader
}

func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{base: newBase(uploadTimeout), Uploader: uploader}
}

// UploadImage handles POST /api/v1/uploads/images. The returned URL is meant
// for a product's images list.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		fail(c, utils.NewAppError("Image uploads are not configured", http.StatusServiceUnavailable))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		fail(c, utils.BadRequest("No image provided or file too large (max 10MB)"))
		return
	}
	defer file.Close()

	// The first 512 bytes decide the real content type.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		fail(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		fail(c, fmt.Errorf("failed to rewind upload: %w", err))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	fallbackExt, ok := imageExtensions[contentType]
	if !ok {
		fail(c, utils.BadRequest("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = fallbackExt
	}
	filename := uuid.New().String() + ext

	ctx, cancel := h.context(c)
	defer cancel()

	url, err := h.Uploader.Upload(ctx, file, filename)
	if err != nil {
		fail(c, fmt.Errorf("image upload failed: %w", err))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse(gin.H{
		"url":  url,
		"size": header.Size,
		"type": contentType,
	}))
}
