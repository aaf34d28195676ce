// Package publish drives pin creation for validated verse records. A
// publish walks Idle -> Submitting -> Succeeded/Failed; client-side
// rejections and auth failures surface immediately, transient upstream
// failures are retried sequentially with exponential backoff before the
// attempt sequence is declared failed.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/trinity-catholic-media/versepin/internal/validate"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// PinCreator is the single-attempt remote call the publisher retries.
type PinCreator interface {
	CreatePin(ctx context.Context, req verse.PinRequest) (string, error)
}

// Options configures a Publisher.
type Options struct {
	BoardID       string
	Link          string
	MinConfidence float64
	// MaxRetries is the retry count after the first attempt.
	MaxRetries uint64
	// RetryBase is the initial backoff interval, doubled per retry.
	RetryBase time.Duration
}

// Publisher submits publishable records as pins. Retries are sequential,
// never concurrent, so a transient failure can never create duplicate pins.
type Publisher struct {
	client PinCreator
	opts   Options
}

// New creates a Publisher.
func New(client PinCreator, opts Options) *Publisher {
	if opts.RetryBase <= 0 {
		opts.RetryBase = time.Second
	}
	return &Publisher{client: client, opts: opts}
}

// Publish submits one pin for the record. The caller is expected to have
// validated the record already; the gate is re-checked here anyway so an
// unvalidated record can never produce a remote call.
func (p *Publisher) Publish(ctx context.Context, rec verse.VerseRecord, imageData []byte, contentType string) (verse.PinResult, error) {
	if complete, missing := validate.RecordComplete(rec); !complete {
		err := fmt.Errorf("%w: missing fields: %s", verse.ErrNotPublishable, strings.Join(missing, ", "))
		return failed(err, 0), err
	}
	if !validate.Confidence(rec.Confidence, p.opts.MinConfidence) {
		err := fmt.Errorf("%w: confidence %.2f below threshold %.2f", verse.ErrNotPublishable, rec.Confidence, p.opts.MinConfidence)
		return failed(err, 0), err
	}

	req := verse.PinRequest{
		BoardID:     p.opts.BoardID,
		ImageData:   imageData,
		ContentType: contentType,
		Title:       rec.Title,
		Description: rec.Description,
		AltText:     rec.Title,
		Link:        p.opts.Link,
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.opts.RetryBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	var (
		pinID    string
		attempts int
	)
	operation := func() error {
		attempts++
		id, err := p.client.CreatePin(ctx, req)
		if err != nil {
			if !verse.Retryable(err) {
				return backoff.Permanent(err)
			}
			slog.Warn("Pin creation attempt failed", "attempt", attempts, "err", err)
			return err
		}
		pinID = id
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, p.opts.MaxRetries), ctx))
	if err != nil {
		slog.Error("Publish failed", "attempts", attempts, "err", err)
		return failed(err, attempts), err
	}

	slog.Info("Pin created", "pin_id", pinID, "attempts", attempts)
	return verse.PinResult{
		Status:   verse.PinSucceeded,
		PinID:    pinID,
		Attempts: attempts,
	}, nil
}

func failed(err error, attempts int) verse.PinResult {
	return verse.PinResult{
		Status:   verse.PinFailed,
		Reason:   reasonFor(err),
		Attempts: attempts,
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, verse.ErrNotPublishable):
		return "record not publishable: " + err.Error()
	case errors.Is(err, verse.ErrAuth):
		return "authentication failed: " + err.Error()
	case errors.Is(err, verse.ErrRejected):
		return "rejected by Pinterest: " + err.Error()
	default:
		return "transient failure, retries exhausted: " + err.Error()
	}
}
