package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/models"
	"github.com/trinity-catholic-media/versepin/internal/verse"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrAlreadyPublished = errors.New("session already published")
	ErrPublishInFlight  = errors.New("publish already in progress")
)

// SessionStore is the in-memory home of review sessions. All session
// mutations go through store methods under the lock, and reads hand out
// snapshots, so handlers never touch a shared session concurrently.
type SessionStore struct {
	sessions map[string]*models.VerseSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.VerseSession),
	}
}

// Get returns a snapshot of the session. Callers may read and encode it
// freely; writes go through Set, SetRecord, or the publish claim.
func (s *SessionStore) Get(sessionID string) (*models.VerseSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	snapshot := *session
	return &snapshot, true
}

func (s *SessionStore) Set(sessionID string, session *models.VerseSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*models.VerseSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.VerseSession, len(s.sessions))
	for k, v := range s.sessions {
		snapshot := *v
		result[k] = &snapshot
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// SetRecord replaces the session's record with the reviewed one. A session
// that has published, or has a publish in flight, is read-only.
func (s *SessionStore) SetRecord(sessionID string, rec *verse.VerseRecord) (*models.VerseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	if session.PinID != "" {
		return nil, ErrAlreadyPublished
	}
	if session.Publishing {
		return nil, ErrPublishInFlight
	}
	session.Record = rec
	snapshot := *session
	return &snapshot, nil
}

// ClaimPublish atomically marks the session as having a publish attempt in
// flight and returns a snapshot for the caller to work from. At most one
// claim can be held per session, and a session that already produced a pin
// can never be claimed again, so concurrent publish requests can never
// both reach the pin API. On ErrAlreadyPublished the snapshot is still
// returned so callers can report the existing pin.
func (s *SessionStore) ClaimPublish(sessionID string) (*models.VerseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	if session.PinID != "" {
		snapshot := *session
		return &snapshot, ErrAlreadyPublished
	}
	if session.Publishing {
		return nil, ErrPublishInFlight
	}
	session.Publishing = true
	snapshot := *session
	return &snapshot, nil
}

// FinishPublish releases the claim taken by ClaimPublish. A non-empty
// pinID records the successful publish and makes the session read-only.
func (s *SessionStore) FinishPublish(sessionID, pinID string, publishedAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return
	}
	session.Publishing = false
	if pinID != "" {
		session.PinID = pinID
		session.PublishedAt = publishedAt
	}
}
