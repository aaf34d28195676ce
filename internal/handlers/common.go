package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/trinity-catholic-media/versepin/internal/config"
	"github.com/trinity-catholic-media/versepin/internal/extract"
	"github.com/trinity-catholic-media/versepin/internal/format"
	"github.com/trinity-catholic-media/versepin/internal/images"
	"github.com/trinity-catholic-media/versepin/internal/models"
	"github.com/trinity-catholic-media/versepin/internal/pinterest"
	"github.com/trinity-catholic-media/versepin/internal/publish"
	"github.com/trinity-catholic-media/versepin/internal/storage"
)

type Handler struct {
	cfg          *config.Config
	sessionStore *storage.SessionStore
	extractor    *extract.Extractor
	formatter    *format.Formatter
	publisher    *publish.Publisher
	fetcher      *images.Fetcher
}

// New wires the pipeline components from configuration.
func New(cfg *config.Config) (*Handler, error) {
	extractor, err := extract.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := pinterest.NewClient(cfg.PinterestAccessToken, cfg.PublishTimeout)
	publisher := publish.New(client, publish.Options{
		BoardID:       cfg.PinterestBoardID,
		Link:          cfg.CommunityLink,
		MinConfidence: cfg.MinConfidence,
		MaxRetries:    uint64(cfg.PublishRetries),
		RetryBase:     cfg.RetryBase,
	})

	return &Handler{
		cfg:          cfg,
		sessionStore: storage.New(),
		extractor:    extractor,
		formatter:    format.New(cfg.CommunityLink),
		publisher:    publisher,
		fetcher:      images.NewFetcher(),
	}, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.VerseSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// File operation helpers
func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll("uploads", 0755)
}
