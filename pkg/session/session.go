// Package session tracks who is using daybook and whether their journal is
// unlocked. A session moves between three states:
//
//	LoggedOut --Authenticate--> LoggedIn --Unlock--> Unlocked
//	    ^                        |   ^                   |
//	    +--------Logout----------+   +-------Lock--------+
//
// Logout is accepted from any state. Every transition notifies subscribers.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/users"
)

// State is the position of a session in the auth state machine.
type State int

const (
	LoggedOut State = iota
	LoggedIn
	Unlocked
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggedIn:
		return "logged_in"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotAuthenticated is returned by transitions that need a signed-in user.
var ErrNotAuthenticated = errors.New("no user is signed in")

// Session is the single current identity of the application.
type Session struct {
	db    *sql.DB
	prefs preferences.Store

	mu        sync.RWMutex
	user      *users.User
	unlocked  bool
	observers map[int]func()
	nextID    int
}

// New returns a logged-out session. Call Initialize to restore a remembered
// login.
func New(db *sql.DB, prefs preferences.Store) *Session {
	return &Session{db: db, prefs: prefs, observers: map[int]func(){}}
}

// Initialize restores the remembered user, if any. A restored session is
// LoggedIn, never Unlocked. A remembered ID that no longer resolves to a user
// is forgotten.
func (s *Session) Initialize(ctx context.Context) error {
	raw, ok, err := s.prefs.Get(preferences.KeyAuthUserID)
	if err != nil {
		return fmt.Errorf("failed to read remembered user: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return s.forget()
	}

	u, err := users.GetUser(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return s.forget()
		}
		return fmt.Errorf("failed to restore user %s: %w", id, err)
	}

	s.mu.Lock()
	s.user = &u
	s.unlocked = false
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) forget() error {
	if err := s.prefs.Remove(preferences.KeyAuthUserID); err != nil {
		return fmt.Errorf("failed to clear remembered user: %w", err)
	}
	return nil
}

// Authenticate makes u the current user in the LoggedIn state and remembers
// them for the next Initialize.
func (s *Session) Authenticate(u users.User) error {
	if err := s.prefs.Set(preferences.KeyAuthUserID, u.ID.String()); err != nil {
		return fmt.Errorf("failed to remember user: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.unlocked = false
	s.mu.Unlock()
	s.notify()
	return nil
}

// Login is an alias for Authenticate.
func (s *Session) Login(u users.User) error {
	return s.Authenticate(u)
}

// Unlock moves a LoggedIn session to Unlocked. The caller verifies the PIN.
func (s *Session) Unlock() error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.unlocked = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// UnlockWithPin verifies pin against the current user and unlocks on success.
// It reports whether the PIN matched.
func (s *Session) UnlockWithPin(pin string) (bool, error) {
	u, ok := s.CurrentUser()
	if !ok {
		return false, ErrNotAuthenticated
	}
	if !users.CheckPin(u, pin) {
		return false, nil
	}
	return true, s.Unlock()
}

// Lock returns an Unlocked session to LoggedIn.
func (s *Session) Lock() {
	s.mu.Lock()
	s.unlocked = false
	s.mu.Unlock()
	s.notify()
}

// Logout clears the current user and the remembered login.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.unlocked = false
	s.mu.Unlock()

	err := s.prefs.Remove(preferences.KeyAuthUserID)
	s.notify()
	if err != nil {
		return fmt.Errorf("failed to clear remembered user: %w", err)
	}
	return nil
}

// Refresh reloads the current user's record, e.g. after their PIN changed.
func (s *Session) Refresh(ctx context.Context) error {
	u, ok := s.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	fresh, err := users.GetUser(ctx, s.db, u.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.user != nil && s.user.ID == fresh.ID {
		s.user = &fresh
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.user == nil:
		return LoggedOut
	case s.unlocked:
		return Unlocked
	default:
		return LoggedIn
	}
}

// CurrentUser returns a copy of the signed-in user.
func (s *Session) CurrentUser() (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return users.User{}, false
	}
	return *s.user, true
}

// UserID returns the signed-in user's ID.
func (s *Session) UserID() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return uuid.Nil, false
	}
	return s.user.ID, true
}

func (s *Session) IsAuthenticated() bool { return s.State() != LoggedOut }

func (s *Session) IsUnlocked() bool { return s.State() == Unlocked }

// Subscribe registers fn to run after every transition and returns a func
// that removes it. fn is called without any session lock held and may read
// the session.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// UnlockedIdentity reports the session's user only while the session is
// Unlocked. Hand it to code that must not run behind the PIN screen.
type UnlockedIdentity struct {
	s *Session
}

// RequireUnlocked returns an identity gated on the Unlocked state.
func (s *Session) RequireUnlocked() UnlockedIdentity {
	return UnlockedIdentity{s: s}
}

func (u UnlockedIdentity) UserID() (uuid.UUID, bool) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	if u.s.user == nil || !u.s.unlocked {
		return uuid.Nil, false
	}
	return u.s.user.ID, true
}
