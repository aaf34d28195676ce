package handlers

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/intake"
	"github.com/trinity-catholic-media/versepin/internal/models"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// processImageBytes runs intake on the uploaded bytes and persists the
// verified image under a content-addressed name for the review UI.
func (h *Handler) processImageBytes(data []byte, declaredMIME string) (*intake.ImageAsset, models.ImageItem, error) {
	asset, err := intake.LoadImage(data, declaredMIME, h.cfg.MaxImageBytes)
	if err != nil {
		return nil, models.ImageItem{}, err
	}

	imageFilename := fmt.Sprintf("%x%s", md5.Sum(data), mimeExtensions[asset.MIME])
	imageFilePath := filepath.Join("uploads", imageFilename)

	if err := os.WriteFile(imageFilePath, data, 0644); err != nil {
		return nil, models.ImageItem{}, fmt.Errorf("failed to save image: %w", err)
	}

	slog.Info("Image saved", "filename", imageFilename, "info", intake.Describe(asset))

	item := models.ImageItem{
		ImagePath: imageFilePath,
		ImageURL:  "/static/uploads/" + imageFilename,
		MIME:      asset.MIME,
		Width:     asset.Width,
		Height:    asset.Height,
		Size:      asset.Size,
	}
	return asset, item, nil
}

// createVerseSession runs extraction and formatting and stores the result
// on a fresh session. Extraction failures do not fail session creation;
// the error and any raw model output are recorded for the review step.
func (h *Handler) createVerseSession(ctx context.Context, sessionID string, asset *intake.ImageAsset, item models.ImageItem) *models.VerseSession {
	session := &models.VerseSession{
		ID:        sessionID,
		Image:     item,
		Provider:  h.cfg.Provider,
		Model:     h.cfg.Model,
		CreatedAt: time.Now(),
	}

	raw, err := h.extractor.Extract(ctx, asset)
	if err != nil {
		slog.Error("Extraction failed", "session_id", sessionID, "err", err)
		session.ExtractionError = err.Error()
		return session
	}
	session.Raw = &raw

	record, err := h.formatter.Format(raw)
	if err != nil {
		slog.Error("Formatting failed", "session_id", sessionID, "err", err)
		session.ExtractionError = err.Error()
		if payload, ok := verse.RawPayload(err); ok {
			session.Raw = &verse.RawExtraction{Text: payload, PromptVersion: raw.PromptVersion}
		}
		return session
	}

	session.Record = &record
	slog.Info("Verse record extracted", "session_id", sessionID,
		"reference", record.Reference, "confidence", record.Confidence)
	return session
}
