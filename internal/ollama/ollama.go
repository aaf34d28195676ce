// Package ollama implements the local development vision provider against
// an Ollama server's generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/trinity-catholic-media/versepin/internal/providers"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// Ollama is a provider backed by a local or remote Ollama instance.
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a new Ollama provider. The host is taken from OLLAMA_URL or
// OLLAMA_HOST, defaulting to the standard local port.
func New() *Ollama {
	baseURL := os.Getenv("OLLAMA_URL")
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// NewWithBaseURL returns an Ollama provider pointed at an explicit host.
func NewWithBaseURL(baseURL string) *Ollama {
	return &Ollama{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// ExtractText sends the image and prompt to Ollama and returns the raw
// completion text.
func (o *Ollama) ExtractText(ctx context.Context, req providers.Request) (string, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  req.Model,
		"prompt": req.Prompt,
		"images": []string{base64.StdEncoding.EncodeToString(req.ImageData)},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", verse.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", classifyStatus(resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: failed to decode response body: %v", verse.ErrUpstream, err)
	}

	return response.Response, nil
}

func classifyStatus(code int, body string) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", verse.ErrAuth, code, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", verse.ErrRateLimited, code)
	default:
		return fmt.Errorf("%w: status %d: %s", verse.ErrUpstream, code, body)
	}
}
