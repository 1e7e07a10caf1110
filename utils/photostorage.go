package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxPhotoSize is 10MB in bytes
	MaxPhotoSize = 10 * 1024 * 1024
	// PhotoFormat is the only accepted extension for order photos
	PhotoFormat = ".png"
)

var (
	// PhotoDir is the directory where order photos are stored when S3
	// is not configured. Can be overridden for testing.
	PhotoDir = "./uploads"
)

// PhotoUploadError represents a photo upload validation error
type PhotoUploadError struct {
	Code    string
	Message string
}

func (e *PhotoUploadError) Error() string {
	return e.Message
}

// ValidatePhotoFile checks the format and size of an uploaded order photo
func ValidatePhotoFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxPhotoSize {
		return &PhotoUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != PhotoFormat {
		return &PhotoUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", PhotoFormat),
		}
	}

	return nil
}

// SavePhotoLocally writes an order photo to photoDir and returns the stored
// filename. Used as the fallback when S3 is not configured.
func SavePhotoLocally(fileHeader *multipart.FileHeader, photoDir string) (filename string, err error) {
	if err := os.MkdirAll(photoDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create photo directory: %w", err)
	}

	// Timestamp prefix keeps repeated uploads of the same file distinct
	filename = fmt.Sprintf("%d_%s",
		time.Now().UnixNano(),
		filepath.Base(fileHeader.Filename))

	fullPath := filepath.Join(photoDir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			fmt.Printf("warning: failed to close source file: %v\n", closeErr)
		}
	}()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close photo file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	return filename, nil
}

// GetPhotoURL returns the URL path for accessing a locally stored order photo
func GetPhotoURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
