package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/piwi3910/PalletLoad/internal/model"
)

// Session is the form state a user carries between runs: the selected
// catalog containers and the pallet rows entered or imported so far.
type Session struct {
	ID                 string             `json:"id"`
	SelectedContainers []string           `json:"selected_containers"`
	Pallets            []model.PalletType `json:"pallets"`
	StackCap           int                `json:"stack_cap"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// SessionStore provides access to per-user session state.
type SessionStore interface {
	GetSession(id string) (Session, error)
	SaveSession(s Session) error
	DeleteSession(id string) error
}

// MemoryStore keeps sessions in-memory and guards access with a RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore returns an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// GetSession returns a copy of the stored session.
func (s *MemoryStore) GetSession(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return cloneSession(sess), nil
}

// SaveSession stores a copy of the session and stamps UpdatedAt.
func (s *MemoryStore) SaveSession(sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSession)
	}
	if sess.StackCap < 0 {
		return fmt.Errorf("%w: negative stack cap", ErrInvalidSession)
	}

	stored := cloneSession(sess)
	s.mu.Lock()
	stored.UpdatedAt = s.now().UTC()
	s.sessions[sess.ID] = stored
	s.mu.Unlock()

	return nil
}

// DeleteSession removes a session. Deleting an unknown id is an error so the
// API can answer 404.
func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func cloneSession(src Session) Session {
	out := src
	out.SelectedContainers = append([]string{}, src.SelectedContainers...)
	out.Pallets = append([]model.PalletType{}, src.Pallets...)
	return out
}
