// Package session keeps the staff sessions of the console. A Session is
// created on login, passed explicitly to whatever needs the caller's identity,
// and dropped on logout or expiry.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
}

type Session struct {
	ID        string       `json:"sessionId"`
	Token     string       `json:"-"`
	User      models.User  `json:"user"`
	Menu      []Affordance `json:"menu"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Can reports whether the session's menu grants capability key.
func (s *Session) Can(key string) bool {
	key = normaliseKey(key)
	for _, a := range s.Menu {
		if a.Key == key {
			return true
		}
	}
	return false
}

type Manager struct {
	auth     Authenticator
	registry *Registry
	secret   string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	onEnd    []func(sessionID string)
}

func NewManager(auth Authenticator, registry *Registry, secret string, ttl time.Duration) *Manager {
	return &Manager{
		auth:     auth,
		registry: registry,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Login authenticates against the backend and opens a session. The token's
// claims win over the user record for id and role.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*Session, error) {
	res, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	claims, err := ParseToken(res.Token, m.secret)
	if err != nil {
		return nil, fmt.Errorf("backend returned an unusable token: %w", err)
	}

	user := res.User
	if claims.UserID != 0 {
		user.ID = claims.UserID
	}
	if claims.Role != "" {
		user.Role = claims.Role
	}

	expires := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expires) {
		expires = claims.ExpiresAt.Time
	}

	s := &Session{
		ID:        uuid.NewString(),
		Token:     res.Token,
		User:      user,
		Menu:      m.registry.Menu(res.Permissions),
		ExpiresAt: expires,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	utils.InfoLogger.Printf("Session opened for user %d (%s)", user.ID, user.Role)
	return s, nil
}

// OnEnd registers fn to run after a session ends by logout or expiry. Each
// session ends once.
func (m *Manager) OnEnd(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = append(m.onEnd, fn)
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	if !m.now().Before(s.ExpiresAt) {
		if m.remove(id) {
			m.ended(id)
		}
		return nil, models.ErrSessionExpired
	}
	return s, nil
}

func (m *Manager) Logout(id string) error {
	if !m.remove(id) {
		return models.ErrSessionNotFound
	}
	m.ended(id)
	return nil
}

// Sweep ends every expired session, including ones nobody asks for again,
// and returns how many it ended.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.ended(id)
	}
	if len(expired) > 0 {
		utils.InfoLogger.Printf("Swept %d expired sessions", len(expired))
	}
	return len(expired)
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Count returns the number of open sessions, expired ones included until
// they are next touched or swept.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// remove reports whether id was still open.
func (m *Manager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// ended runs the OnEnd hooks outside the lock so they may call back in.
func (m *Manager) ended(id string) {
	m.mu.RLock()
	hooks := append(([]func(string))(nil), m.onEnd...)
	m.mu.RUnlock()

	for _, fn := range hooks {
		fn(id)
	}
}
