package models

import (
	"time"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// VerseSession represents one image's journey through extraction, human
// review, and publish. The record is editable through the review API until
// a publish succeeds.
type VerseSession struct {
	ID              string               `json:"id"`
	Image           ImageItem            `json:"image"`
	Raw             *verse.RawExtraction `json:"raw,omitempty"`
	Record          *verse.VerseRecord   `json:"record,omitempty"`
	ExtractionError string               `json:"extraction_error,omitempty"`
	Provider        string               `json:"provider,omitempty"`
	Model           string               `json:"model,omitempty"`
	PinID           string               `json:"pin_id,omitempty"`
	PublishedAt     *time.Time           `json:"published_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`

	// Publishing marks a publish attempt in flight. Only the session
	// store may set or clear it.
	Publishing bool `json:"-"`
}

// ImageItem represents an uploaded verse image.
type ImageItem struct {
	ImagePath string `json:"image_path"`
	ImageURL  string `json:"image_url"`
	MIME      string `json:"mime"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int64  `json:"size"`
}
