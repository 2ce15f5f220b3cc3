// Package images uploads recipe and avatar images to an imgur-style
// hosting service and hands back the hosted link.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted payload. Checked before any
// network I/O so oversized picks fail instantly.
const MaxImageSize = 5 << 20

const uploadTimeout = 30 * time.Second

// UploadError is a user-presentable upload failure. The admin forms show
// its message as a blocking alert.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

// Uploader posts images to the hosting service.
type Uploader struct {
	endpoint   string
	clientID   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewUploader creates an Uploader for the given endpoint. clientID is the
// hosting service's anonymous API credential.
func NewUploader(endpoint, clientID string, logger *zap.Logger) *Uploader {
	return &Uploader{
		endpoint:   endpoint,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: uploadTimeout},
		logger:     logger,
	}
}

// uploadResponse mirrors the hosting service's JSON body.
type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Upload sends the image bytes and returns the hosted URL. contentType
// must be an image/* type and data must fit MaxImageSize; both are
// rejected locally.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", &UploadError{Message: "Please select an image file"}
	}
	if len(data) > MaxImageSize {
		return "", &UploadError{Message: "Image must be smaller than 5MB"}
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Client-ID "+u.clientID)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		u.logger.Error("image upload failed", zap.Error(err))
		return "", &UploadError{Message: "Failed to upload image. Please try again."}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		u.logger.Error("image host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return "", &UploadError{Message: "Failed to upload image. Please try again."}
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if !decoded.Success || decoded.Data.Link == "" {
		return "", &UploadError{Message: "Failed to upload image. Please try again."}
	}
	return decoded.Data.Link, nil
}
