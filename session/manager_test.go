package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

type fakeAuth struct {
	result *models.LoginResult
	err    error
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestManager(t *testing.T, auth Authenticator, secret string, ttl time.Duration) *Manager {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return NewManager(auth, reg, secret, ttl)
}

func signedResult(t *testing.T, secret string, lifetime time.Duration) *models.LoginResult {
	t.Helper()
	user := models.User{ID: 7, Name: "Ayu", Email: "ayu@example.com", Role: "cashier"}
	token, err := IssueToken(secret, user, lifetime)
	require.NoError(t, err)
	return &models.LoginResult{
		Token: token,
		User:  models.User{Name: user.Name, Email: user.Email},
		Permissions: []models.Permission{
			{Capability: "POS"},
			{Capability: "ORDERS"},
		},
	}
}

func TestLoginOpensSession(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", time.Hour)}
	m := newTestManager(t, auth, "s3cret", 12*time.Hour)

	s, err := m.Login(context.Background(), models.Credentials{Email: "ayu@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, uint(7), s.User.ID)
	assert.Equal(t, "cashier", s.User.Role)
	assert.True(t, s.Can("pos"))
	assert.False(t, s.Can("USERS"))
	// token expiry is earlier than the session ttl
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestLoginWithoutSecretDecodesOnly(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "someone-elses-secret", time.Hour)}
	m := newTestManager(t, auth, "", time.Hour)

	s, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, uint(7), s.User.ID)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "one", time.Hour)}
	m := newTestManager(t, auth, "two", time.Hour)

	_, err := m.Login(context.Background(), models.Credentials{})
	assert.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestLoginPropagatesBackendError(t *testing.T) {
	boom := errors.New("backend down")
	m := newTestManager(t, &fakeAuth{err: boom}, "", time.Hour)

	_, err := m.Login(context.Background(), models.Credentials{})
	assert.ErrorIs(t, err, boom)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", -time.Minute)}
	m := newTestManager(t, auth, "s3cret", time.Hour)

	_, err := m.Login(context.Background(), models.Credentials{})
	assert.ErrorIs(t, err, models.ErrSessionExpired)
}

func TestSessionExpiry(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", time.Hour)}
	m := newTestManager(t, auth, "s3cret", 10*time.Minute)

	now := time.Now()
	m.now = func() time.Time { return now }

	s, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(11 * time.Minute) }
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", time.Hour)}
	m := newTestManager(t, auth, "s3cret", time.Hour)

	s, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.Logout(s.ID))
	assert.ErrorIs(t, m.Logout(s.ID), models.ErrSessionNotFound)

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestEndHooksRunOncePerSession(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", time.Hour)}
	m := newTestManager(t, auth, "s3cret", 10*time.Minute)

	var ended []string
	m.OnEnd(func(id string) { ended = append(ended, id) })

	now := time.Now()
	m.now = func() time.Time { return now }

	loggedOut, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)
	expired, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.Logout(loggedOut.ID))
	assert.Error(t, m.Logout(loggedOut.ID))
	assert.Equal(t, []string{loggedOut.ID}, ended)

	m.now = func() time.Time { return now.Add(11 * time.Minute) }
	_, err = m.Get(expired.ID)
	assert.ErrorIs(t, err, models.ErrSessionExpired)
	_, err = m.Get(expired.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	assert.Equal(t, []string{loggedOut.ID, expired.ID}, ended)
	assert.Zero(t, m.Sweep())
}

func TestSweepEndsUntouchedExpiredSessions(t *testing.T) {
	auth := &fakeAuth{result: signedResult(t, "s3cret", time.Hour)}
	m := newTestManager(t, auth, "s3cret", 10*time.Minute)

	var ended []string
	m.OnEnd(func(id string) { ended = append(ended, id) })

	now := time.Now()
	m.now = func() time.Time { return now }

	old, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(5 * time.Minute) }
	fresh, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(11 * time.Minute) }
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, []string{old.ID}, ended)
	assert.Equal(t, 1, m.Count())

	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	m := newTestManager(t, &fakeAuth{}, "", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
