package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrNotAuthenticated is returned when an operation that requires a live
// session is called without one.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Event describes a session state change delivered to subscribers
type Event string

const (
	EventRestored    Event = "restored"
	EventLoggedIn    Event = "logged_in"
	EventLoggedOut   Event = "logged_out"
	EventUserUpdated Event = "user_updated"
	EventInvalidated Event = "invalidated"
)

// AuthAPI is the slice of the backend client the store depends on
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, input domain.RegisterInput) (*domain.Session, error)
	UpdateProfile(ctx context.Context, input domain.ProfileUpdate) (*domain.User, error)
}

// Store holds the current session and is its only writer. Every mutation,
// including the persistence write, happens under the same mutex, so a
// profile-update response racing a 401 teardown cannot resurrect a dead
// session in memory or on disk.
type Store struct {
	api   AuthAPI
	creds domain.CredentialStore

	mu      sync.RWMutex
	session *domain.Session
	subs    []func(Event)
}

// NewStore creates a session store backed by the given credential store
func NewStore(api AuthAPI, creds domain.CredentialStore) *Store {
	return &Store{api: api, creds: creds}
}

// Subscribe registers a callback invoked after every state change.
// Callbacks run outside the store lock and may call back into the store.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(event Event) {
	s.mu.RLock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Restore loads the persisted session at startup. No network call is made;
// a stale token is discovered lazily through the first 401. Either both
// token and user are present, or the state is fully unauthenticated.
func (s *Store) Restore() error {
	s.mu.Lock()
	session, err := s.creds.Load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.session = session
	s.mu.Unlock()

	if session.Valid() {
		log.Debug().Str("user", session.User.Email).Msg("Session restored")
	}
	s.notify(EventRestored)
	return nil
}

// Login authenticates against the backend and, on success, persists the
// session before any observer learns about it. Bad credentials come back
// as a normal error carrying the server message.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !session.Valid() {
		return nil, errors.New("session: login response missing token or user")
	}

	if err := s.store(session); err != nil {
		return nil, err
	}
	s.notify(EventLoggedIn)
	return session.User, nil
}

// Register creates an account and logs straight into it
func (s *Store) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	session, err := s.api.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	if !session.Valid() {
		return nil, errors.New("session: register response missing token or user")
	}

	if err := s.store(session); err != nil {
		return nil, err
	}
	s.notify(EventLoggedIn)
	return session.User, nil
}

// Logout clears persisted and in-memory state unconditionally
func (s *Store) Logout() {
	s.clear()
	s.notify(EventLoggedOut)
}

// Invalidate is the 401 teardown path: identical to logout except for the
// event it emits, so observers can tell "user left" from "credentials died".
func (s *Store) Invalidate() {
	s.clear()
	log.Info().Msg("Session invalidated by backend")
	s.notify(EventInvalidated)
}

// UpdateUser saves the profile via the backend and replaces the stored user.
// The token is left untouched. Calling this without a session is a misuse
// error, as is completing it after a concurrent teardown.
func (s *Store) UpdateUser(ctx context.Context, input domain.ProfileUpdate) (*domain.User, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.api.UpdateProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.session.Valid() {
		// Torn down while the update was in flight; do not resurrect.
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	updated := &domain.Session{Token: s.session.Token, User: user}
	// Persist while still holding the lock: a teardown must not interleave
	// between the validity check, the write to disk, and the write to memory.
	if err := s.creds.Save(updated); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.session = updated
	s.mu.Unlock()

	s.notify(EventUserUpdated)
	return user, nil
}

// Token returns the current bearer token, or "" when unauthenticated
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Valid() {
		return ""
	}
	return s.session.Token
}

// User returns a copy of the current user, or nil when unauthenticated
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Valid() {
		return nil
	}
	user := *s.session.User
	return &user
}

// Authenticated reports whether a full session is held
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Valid()
}

// IsAdmin reports whether the current user has the admin role
func (s *Store) IsAdmin() bool { return s.role() == domain.RoleAdmin }

// IsAgent reports whether the current user has the agent role
func (s *Store) IsAgent() bool { return s.role() == domain.RoleAgent }

// IsCustomer reports whether the current user has the customer role
func (s *Store) IsCustomer() bool { return s.role() == domain.RoleCustomer }

func (s *Store) role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Valid() {
		return ""
	}
	return s.session.User.Role
}

func (s *Store) store(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.creds.Save(session); err != nil {
		return err
	}
	s.session = session
	return nil
}

func (s *Store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := s.creds.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session")
	}
}
