package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxImageSize is the upload cap for gallery photos
	MaxImageSize = 10 * 1024 * 1024 // 10MB
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ValidateImageUpload checks that the uploaded file is an accepted image
// format within the size limit. The content is sniffed, not just the
// extension.
func ValidateImageUpload(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxImageSize {
		return fmt.Errorf("file size exceeds maximum allowed size of 10MB")
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	isAllowed := false
	for _, allowed := range allowedImageExtensions {
		if ext == allowed {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		return fmt.Errorf("file type not allowed. Accepted formats: JPG, JPEG, PNG, WEBP")
	}

	// Open file to check magic bytes
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file content: %w", err)
	}
	buffer = buffer[:n]

	if !isImageContent(buffer) {
		return fmt.Errorf("file is not a valid image")
	}

	return nil
}

// isImageContent checks the magic bytes for JPEG, PNG and WebP
func isImageContent(header []byte) bool {
	switch {
	case len(header) >= 3 && bytes.Equal(header[0:3], []byte{0xFF, 0xD8, 0xFF}):
		return true // JPEG
	case len(header) >= 8 && bytes.Equal(header[0:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return true // PNG
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WEBP")):
		return true // WebP
	default:
		return false
	}
}
