// Package providers defines the abstraction over vision-capable model
// backends. Each provider maps its transport failures onto the shared
// verse error kinds so callers never inspect HTTP statuses themselves.
package providers

import (
	"context"
)

// Request carries one vision extraction call: the prompt plus the image to
// analyze. ImageFormat is the bare subtype ("jpeg", "png", "webp").
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	ImageData   []byte
	ImageFormat string
}

// Provider is a vision model backend that turns an image plus prompt into
// free text. The text is not guaranteed to be valid JSON; structuring it
// is the formatter's concern.
type Provider interface {
	ExtractText(ctx context.Context, req Request) (string, error)
}
