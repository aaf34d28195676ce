// Package extract turns a verified image into raw model output via one
// upstream vision call. Parsing and repair of that output live in the
// format package; this component stays free of parsing concerns so it can
// be tested against canned raw strings.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/config"
	"github.com/trinity-catholic-media/versepin/internal/gemini"
	"github.com/trinity-catholic-media/versepin/internal/intake"
	"github.com/trinity-catholic-media/versepin/internal/ollama"
	"github.com/trinity-catholic-media/versepin/internal/providers"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// extractionTemperature is kept low for consistent, factual output.
const extractionTemperature = 0.1

// Extractor performs the AI extraction stage of the pipeline.
type Extractor struct {
	provider providers.Provider
	model    string
	timeout  time.Duration
}

// New creates an Extractor on an explicit provider.
func New(provider providers.Provider, model string, timeout time.Duration) *Extractor {
	return &Extractor{
		provider: provider,
		model:    model,
		timeout:  timeout,
	}
}

// NewFromConfig wires the provider named in the configuration.
func NewFromConfig(cfg *config.Config) (*Extractor, error) {
	switch cfg.Provider {
	case "gemini":
		return New(gemini.New(cfg.GeminiAPIKey), cfg.Model, cfg.ExtractTimeout), nil
	case "ollama":
		return New(ollama.New(), cfg.Model, cfg.ExtractTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// Extract sends the image and the versioned extraction prompt upstream and
// returns the raw completion text.
func (e *Extractor) Extract(ctx context.Context, asset *intake.ImageAsset) (verse.RawExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := providers.Request{
		Model:       e.model,
		Temperature: extractionTemperature,
		Prompt:      buildVersePrompt(),
		ImageData:   asset.Data,
		ImageFormat: imageFormat(asset.MIME),
	}

	text, err := e.provider.ExtractText(ctx, req)
	if err != nil {
		return verse.RawExtraction{}, fmt.Errorf("extraction failed: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return verse.RawExtraction{}, fmt.Errorf("extraction failed: %w", verse.ErrEmptyResponse)
	}

	slog.Info("Extraction complete", "model", e.model, "prompt_version", verse.PromptVersion, "length", len(text))

	return verse.RawExtraction{
		Text:          text,
		PromptVersion: verse.PromptVersion,
	}, nil
}

// imageFormat converts a MIME type into the bare subtype the providers
// expect, folding the image/jpg alias into jpeg.
func imageFormat(mime string) string {
	format := strings.TrimPrefix(strings.ToLower(mime), "image/")
	if format == "jpg" {
		format = "jpeg"
	}
	return format
}

// buildVersePrompt returns the fixed extraction prompt. The model is asked
// for a bare JSON object; experience says it will still wrap the object in
// prose or code fences often enough that the formatter has to cope.
func buildVersePrompt() string {
	return `Analyze this image and extract the Malayalam Bible verse it contains.

Respond with ONLY a JSON object in the following format:

{
    "verse_text": "The Malayalam Bible verse text exactly as shown in the image",
    "reference": "The verse reference in the form <Book> <chapter>:<verse>, e.g. John 3:16",
    "confidence": 0.95
}

Important guidelines:
- Extract the Malayalam text exactly as it appears, in Malayalam script. Do not transliterate.
- "confidence" must be a number between 0.0 and 1.0 reflecting your confidence in the extraction accuracy.
- Be honest about confidence: lower it if the text is partially obscured or hard to read.
- If no verse is visible, use an empty string for verse_text and a confidence of 0.0.

Return only the JSON object, no additional text.`
}
