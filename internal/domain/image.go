package domain

import (
	"fmt"
	"io"
)

// SupportedImageTypes maps accepted upload MIME types to display names.
var SupportedImageTypes = map[string]string{
	"image/jpeg": "JPEG",
	"image/png":  "PNG",
}

const (
	// MaxImageSize is the maximum allowed size for an uploaded product image (5MB).
	MaxImageSize = 5 * 1024 * 1024

	// ThumbnailMaxWidth is the maximum width for generated thumbnails.
	ThumbnailMaxWidth = 200

	// ThumbnailMaxHeight is the maximum height for generated thumbnails.
	ThumbnailMaxHeight = 200

	// ThumbnailJPEGQuality is the JPEG quality for thumbnail generation (0-100).
	ThumbnailJPEGQuality = 85
)

// ImageUpload is an image file received from a client.
type ImageUpload struct {
	Filename string
	Size     int64
	Data     io.Reader
}

// IsValidImageContentType reports whether contentType may be uploaded.
func IsValidImageContentType(contentType string) bool {
	_, ok := SupportedImageTypes[contentType]
	return ok
}

// ValidateImageSize rejects empty and oversized uploads.
func ValidateImageSize(size int64) error {
	const op = "image.validate"
	if size <= 0 {
		return Invalid(op, "Image file is empty")
	}
	if size > MaxImageSize {
		return &Error{
			Code:    ETOOLARGE,
			Op:      op,
			Message: fmt.Sprintf("Image exceeds the %d MB limit", MaxImageSize/(1024*1024)),
		}
	}
	return nil
}
