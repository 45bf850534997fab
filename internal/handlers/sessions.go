package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
)

// sessionEntry serializes vault access for one session.
// busy is held for the whole inference call; mu only around vault operations.
type sessionEntry struct {
	session *vault.Session
	mu      sync.Mutex
	busy    atomic.Bool
}

// SessionRegistry tracks the open vault sessions of the server
type SessionRegistry struct {
	sessions map[string]*sessionEntry
	mu       sync.RWMutex
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *SessionRegistry) Get(sessionID string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.sessions[sessionID]
	return entry, exists
}

func (s *SessionRegistry) Set(sess *vault.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = &sessionEntry{session: sess}
}

// Delete closes and forgets a session
func (s *SessionRegistry) Delete(sessionID string) bool {
	s.mu.Lock()
	entry, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if exists {
		entry.mu.Lock()
		entry.session.Close()
		entry.mu.Unlock()
	}
	return exists
}

func (s *SessionRegistry) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Delete(id)
	}
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	Owner     models.Owner `json:"owner"`
}

// HandleCurrentSession describes the session named in the request header
func (h *Handler) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, sessionResponse{SessionID: entry.session.ID(), Owner: entry.session.Owner()})
}

// HandleCreateSession opens a vault session for the given owner (login)
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		OwnerID string `json:"owner_id"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.OwnerID == "" {
		h.writeError(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	sess, err := h.store.Open(r.Context(), models.Owner{ID: request.OwnerID, Name: request.Name})
	if err != nil {
		h.writeVaultError(w, err)
		return
	}
	h.sessions.Set(sess)

	h.writeJSONStatus(w, http.StatusCreated, sessionResponse{SessionID: sess.ID(), Owner: sess.Owner()})
}

// HandleDeleteSession closes a session (logout)
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(r.PathValue("id")) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
