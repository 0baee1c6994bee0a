package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ImageConstraints defines validation rules for uploaded image parts
type ImageConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxSize          int64
}

// DefaultImageConstraints matches what the generation pipeline produces plus
// common re-encodes from the client
var DefaultImageConstraints = ImageConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	MaxSize: 50 << 20, // 50MB
}

// ValidateImagePart validates an uploaded image part and returns the detected
// MIME type. The type is sniffed from the content's magic numbers, not taken
// from the part's Content-Type header, which the client controls.
func ValidateImagePart(header *multipart.FileHeader, constraints ImageConstraints) (string, error) {
	// Check size first (before reading content)
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", fmt.Errorf("image too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image part: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads at most 512 bytes
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read image part: %w", err)
	}

	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return "", fmt.Errorf("invalid image type (detected: %s)", detectedType)
	}

	return detectedType, nil
}
