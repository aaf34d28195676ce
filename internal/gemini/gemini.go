// Package gemini implements the production vision provider on top of the
// Google Generative AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/trinity-catholic-media/versepin/internal/providers"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// Gemini is a provider for Google Gemini vision models.
type Gemini struct {
	apiKey string
}

// New returns a new Gemini provider using the given API key.
func New(apiKey string) *Gemini {
	return &Gemini{apiKey: apiKey}
}

// ExtractText sends the image and prompt to Gemini and returns the raw
// completion text.
func (g *Gemini) ExtractText(ctx context.Context, req providers.Request) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", verse.ErrAuth)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(req.ImageFormat, req.ImageData),
		genai.Text(req.Prompt),
	)
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned from Gemini", verse.ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content returned from Gemini", verse.ErrEmptyResponse)
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("%w: unexpected response format from Gemini", verse.ErrUpstream)
}

// classify maps SDK transport errors onto the pipeline error kinds.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", verse.ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", verse.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", verse.ErrUpstream, err)
}
