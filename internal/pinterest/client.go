// Package pinterest is a minimal client for the Pinterest v5 pins API.
// One call creates at most one pin; the API is atomic per call, so there is
// never partial remote state to roll back.
package pinterest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// DefaultBaseURL is the production Pinterest API endpoint.
const DefaultBaseURL = "https://api.pinterest.com/v5"

// Client talks to the Pinterest pins API.
type Client struct {
	BaseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a Pinterest client. The timeout bounds each individual
// pin-creation attempt.
func NewClient(accessToken string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     DefaultBaseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// mediaSource is the inline base64 upload variant of the pins API.
type mediaSource struct {
	SourceType  string `json:"source_type"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type createPinPayload struct {
	BoardID     string      `json:"board_id"`
	MediaSource mediaSource `json:"media_source"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Link        string      `json:"link,omitempty"`
	AltText     string      `json:"alt_text,omitempty"`
}

// CreatePin submits one pin-creation request and returns the remote pin id.
// Status classes map onto the pipeline error kinds: 401/403 are auth
// failures, 400/422 and other 4xx are semantic rejections, 429 and 5xx and
// transport failures are transient.
func (c *Client) CreatePin(ctx context.Context, req verse.PinRequest) (string, error) {
	payload := createPinPayload{
		BoardID: req.BoardID,
		MediaSource: mediaSource{
			SourceType:  "image_base64",
			ContentType: req.ContentType,
			Data:        base64.StdEncoding.EncodeToString(req.ImageData),
		},
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		AltText:     req.AltText,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/pins", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", verse.ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("%w: pin created but response had no id: %s", verse.ErrTransient, string(respBody))
	}

	return created.ID, nil
}

func classifyStatus(code int, body []byte) error {
	message := remoteMessage(body)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", verse.ErrAuth, code, message)
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: status %d: %s", verse.ErrTransient, code, message)
	default:
		// 400, 422, and the remaining 4xx: the request itself is refused
		// and retrying it cannot succeed.
		return fmt.Errorf("%w: status %d: %s", verse.ErrRejected, code, message)
	}
}

// remoteMessage pulls the error message out of a Pinterest error body,
// falling back to the raw body.
func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(body)
}
