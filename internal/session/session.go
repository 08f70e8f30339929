// Package session owns the authenticated session: the bearer token and the
// profile that came with it. Manager is the only writer; list views read the
// token through the TokenSource-shaped Token method.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/storage"
)

// Keys under which the session is persisted. They are always written and
// removed together.
const (
	TokenKey = "auth.token"
	UserKey  = "auth.user"
)

// ErrNoSession is returned by operations that need a logged-in user.
var ErrNoSession = errors.New("not logged in")

// StateStore is the subset of storage.Store the manager needs.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, error)
	SetStates(ctx context.Context, values map[string]string) error
	DeleteState(ctx context.Context, keys ...string) error
}

// Session is a bearer token plus the profile returned with it.
type Session struct {
	Token string
	User  portal.User
}

// Manager holds the current session and persists every change.
type Manager struct {
	mu      sync.RWMutex
	store   StateStore
	logger  logging.Logger
	current *Session
}

func NewManager(store StateStore, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// Restore loads the persisted session, if any. A missing token leaves the
// manager logged out. A profile that cannot be decoded is discarded and the
// token kept.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.GetState(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		m.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	if token == "" {
		m.set(nil)
		return nil
	}

	sess := &Session{Token: token}

	raw, err := m.store.GetState(ctx, UserKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read session user: %w", err)
	default:
		if jerr := json.Unmarshal([]byte(raw), &sess.User); jerr != nil {
			m.logger.Warn("session", "discarding unreadable stored profile", map[string]interface{}{
				"error": jerr,
			})
			sess.User = portal.User{}
			if derr := m.store.DeleteState(ctx, UserKey); derr != nil {
				return fmt.Errorf("clear session user: %w", derr)
			}
		}
	}

	m.set(sess)
	return nil
}

// Begin stores a new session, replacing any previous one.
func (m *Manager) Begin(ctx context.Context, token string, user portal.User) error {
	if token == "" {
		return errors.New("empty session token")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	if err := m.store.SetStates(ctx, map[string]string{
		TokenKey: token,
		UserKey:  string(data),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.set(&Session{Token: token, User: user})
	m.logger.Info("session", "session started", map[string]interface{}{
		"user_id": user.ID,
		"role_id": user.RoleID,
	})
	return nil
}

// Logout removes both persisted keys and forgets the in-memory session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.DeleteState(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.set(nil)
	m.logger.Info("session", "session ended", nil)
	return nil
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

// Token returns the current bearer token or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Current returns a copy of the session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

func (m *Manager) Authenticated() bool { return m.Token() != "" }
