package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/trinity-catholic-media/versepin/internal/models"
	"github.com/trinity-catholic-media/versepin/internal/storage"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]*models.VerseSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	if sessionID, ok := strings.CutSuffix(rest, "/publish"); ok {
		h.HandlePublish(w, r, sessionID)
		return
	}

	session, ok := h.getSessionOrError(w, rest)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "PUT":
		h.updateSessionRecord(w, r, session)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// updateSessionRecord applies human review edits to the session's record.
// A session that already produced a pin, or has a publish in flight, is
// read-only; the store enforces both under its lock.
func (h *Handler) updateSessionRecord(w http.ResponseWriter, r *http.Request, session *models.VerseSession) {
	var update struct {
		Record verse.VerseRecord `json:"record"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.sessionStore.SetRecord(session.ID, &update.Record)
	switch {
	case errors.Is(err, storage.ErrAlreadyPublished):
		h.writeError(w, "Session already published; record is read-only", http.StatusConflict)
	case errors.Is(err, storage.ErrPublishInFlight):
		h.writeError(w, "Publish in progress; record is read-only", http.StatusConflict)
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, "Session not found", http.StatusNotFound)
	case err != nil:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	default:
		h.writeJSON(w, updated)
	}
}
