package session

import (
	"fmt"
	"sync"
)

// TokenKey is the name the auth token is persisted under
const TokenKey = "auth_token"

// TokenStore persists the auth token between runs
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session holds the auth token used by every backend call. All reads and
// writes go through one mutex so there is a single writer at any time.
type Session struct {
	mu     sync.Mutex
	store  TokenStore
	token  string
	loaded bool
}

func New(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryStore("")
	}
	return &Session{store: store}
}

// Token returns the current token, reading the store on first use.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		token, err := s.store.Load()
		if err == nil {
			s.token = token
		}
		s.loaded = true
	}
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.loaded = true
	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *Session) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.loaded = true
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

type memoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore keeps the token for the life of the process only
func NewMemoryStore(token string) TokenStore {
	return &memoryStore{token: token}
}

func (m *memoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
