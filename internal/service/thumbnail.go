package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/DukeRupert/estoque/internal/domain"
	"github.com/disintegration/imaging"
)

// ThumbnailProcessor generates product image thumbnails.
type ThumbnailProcessor interface {
	// GenerateThumbnail returns a JPEG that fits within maxWidth x maxHeight.
	GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, error)
}

type imagingProcessor struct{}

// NewImagingProcessor creates a ThumbnailProcessor using the imaging library.
func NewImagingProcessor() ThumbnailProcessor {
	return &imagingProcessor{}
}

// GenerateThumbnail decodes a JPEG or PNG, fits it preserving aspect ratio
// and re-encodes it as JPEG. Images smaller than the box are not upscaled.
func (p *imagingProcessor) GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG, imaging.JPEGQuality(domain.ThumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
