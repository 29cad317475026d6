// Package session holds the authentication token, persists it across
// restarts and decides which routes a user may open.
package session

import (
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/apperr"
)

// TokenKey is the storage key the token is persisted under.
const TokenKey = "token"

// Store owns the current token. Durable and in-memory copies agree once
// Login or Logout returns without error.
type Store struct {
	storage Storage
	logger  *log.Logger

	mu        sync.RWMutex
	token     string
	observers map[int]func(bool)
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore returns a logged-out Store backed by storage. Call Initialize to
// restore a persisted session.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		logger:    log.Default(),
		observers: make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted token. A missing or unreadable token leaves
// the store logged out.
func (s *Store) Initialize() {
	token, err := s.storage.Load(TokenKey)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("no persisted session")
		token = ""
	case err != nil:
		s.logger.Debug("could not read persisted session, treating as logged out", "err", err)
		token = ""
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Login persists token, makes it current and notifies observers.
// If persisting fails the current state is left unchanged.
func (s *Store) Login(token string) error {
	const op = "login"
	if token == "" {
		return apperr.Errorf(apperr.ValidationFailure, op, "token must not be empty")
	}

	s.mu.Lock()
	if err := s.storage.Save(TokenKey, token); err != nil {
		s.mu.Unlock()
		return apperr.E(apperr.Unknown, op, err)
	}
	s.token = token
	s.mu.Unlock()

	s.logger.Debug("session started")
	s.notify(true)
	return nil
}

// Logout clears the persisted and current token and notifies observers.
// The in-memory session is cleared even if the durable delete fails.
func (s *Store) Logout() error {
	s.mu.Lock()
	err := s.storage.Delete(TokenKey)
	s.token = ""
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("could not remove persisted session", "err", err)
	} else {
		s.logger.Debug("session ended")
	}
	s.notify(false)

	if err != nil {
		return apperr.E(apperr.Unknown, "logout", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current token and whether one is set.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Subscribe registers fn to be called with the new authenticated state after
// every Login and Logout. The returned func unregisters it.
func (s *Store) Subscribe(fn func(authenticated bool)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(authenticated bool) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(authenticated)
	}
}
