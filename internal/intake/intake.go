// Package intake loads and verifies uploaded verse images before they are
// handed to the extractor.
package intake

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// allowedMIMETypes is the accepted upload format set. image/jpg is a common
// browser misnomer for image/jpeg and is accepted as an alias.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ImageAsset is a verified uploaded image. Width and Height come from
// decoding the actual pixel data, not from anything the client declared.
// Created at intake, immutable, discarded once extraction completes.
type ImageAsset struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Size   int64
}

// LoadImage verifies format and size and probes the pixel dimensions.
// The declared MIME type gates the allow-list but the measured dimensions
// are authoritative since declared metadata may lie.
func LoadImage(data []byte, declaredMIME string, maxBytes int64) (*ImageAsset, error) {
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if !allowedMIMETypes[mime] {
		return nil, fmt.Errorf("%w: %q (accepted: JPEG, PNG, WEBP)", verse.ErrUnsupportedFormat, declaredMIME)
	}

	size := int64(len(data))
	if size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", verse.ErrTooLarge, size, maxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verse.ErrCorrupt, err)
	}

	return &ImageAsset{
		Data:   data,
		MIME:   mime,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   size,
	}, nil
}

// Describe formats the asset's vitals for logs and the review UI.
func Describe(asset *ImageAsset) string {
	return fmt.Sprintf("%dx%d %s, %s", asset.Width, asset.Height, asset.MIME, humanSize(asset.Size))
}

func humanSize(bytes int64) string {
	kb := float64(bytes) / 1024
	mb := kb / 1024
	if mb > 1 {
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f KB", kb)
}
