package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/storage"
	"github.com/trinity-catholic-media/versepin/internal/validate"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// HandlePublish submits a reviewed session's record as a pin. The session
// store grants one publish claim at a time, so concurrent requests for the
// same session can never create duplicate pins.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.sessionStore.ClaimPublish(sessionID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrAlreadyPublished):
		h.writeError(w, "Session already published as pin "+session.PinID, http.StatusConflict)
		return
	case errors.Is(err, storage.ErrPublishInFlight):
		h.writeError(w, "Publish already in progress for this session", http.StatusConflict)
		return
	}

	// Every path that does not record a pin must release the claim.
	release := func() { h.sessionStore.FinishPublish(sessionID, "", nil) }

	if session.Record == nil {
		release()
		h.writeError(w, "Session has no record to publish", http.StatusBadRequest)
		return
	}

	if ok, missing := validate.CheckCredentials(validate.Credentials{
		GeminiAPIKey:         h.cfg.GeminiAPIKey,
		PinterestAccessToken: h.cfg.PinterestAccessToken,
		PinterestBoardID:     h.cfg.PinterestBoardID,
	}); !ok {
		release()
		h.writeError(w, "Missing credentials: "+strings.Join(missing, ", "), http.StatusInternalServerError)
		return
	}

	if complete, missing := validate.RecordComplete(*session.Record); !complete {
		release()
		h.writeError(w, "Record incomplete, missing: "+strings.Join(missing, ", "), http.StatusBadRequest)
		return
	}
	if !validate.Confidence(session.Record.Confidence, h.cfg.MinConfidence) {
		release()
		h.writeError(w, "Record confidence below publish threshold; review and correct it first", http.StatusBadRequest)
		return
	}

	imageData, err := os.ReadFile(session.Image.ImagePath)
	if err != nil {
		release()
		h.writeError(w, "Failed to read stored image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := h.publisher.Publish(r.Context(), *session.Record, imageData, session.Image.MIME)
	if err != nil {
		release()
		h.writeJSONStatus(w, publishFailureStatus(err), result)
		return
	}

	now := time.Now()
	h.sessionStore.FinishPublish(sessionID, result.PinID, &now)

	h.writeJSON(w, result)
}

func publishFailureStatus(err error) int {
	if errors.Is(err, verse.ErrNotPublishable) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
