package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

func setupKV(t *testing.T) *Store {
	t.Helper()
	kv, err := New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestCredentialRegistry_PutIsCreateOnly(t *testing.T) {
	reg := NewCredentialRegistry(setupKV(t))

	cred := &domain.Credential{
		Username:     "alice",
		PasswordHash: "abc123",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, reg.Put("user_alice", cred))

	err := reg.Put("user_alice", cred)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	got, err := reg.Get("user_alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "abc123", got.PasswordHash)
}

func TestCredentialRegistry_GetMissing(t *testing.T) {
	reg := NewCredentialRegistry(setupKV(t))

	_, err := reg.Get("user_nobody")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSessions_Lifecycle(t *testing.T) {
	sessions := NewSessions(setupKV(t))

	_, err := sessions.Load()
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	sess := &domain.Session{Username: "alice", UserID: "user_alice", LoginAt: time.Now().UTC()}
	require.NoError(t, sessions.Save(sess))

	got, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "user_alice", got.UserID)

	require.NoError(t, sessions.Clear())
	_, err = sessions.Load()
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Clearing an absent session is fine.
	require.NoError(t, sessions.Clear())
}

func TestSettingsStore(t *testing.T) {
	settings := NewSettingsStore(setupKV(t))

	// Nothing saved yet: the defaults win.
	got, err := settings.Load(domain.Settings{SyncEnabled: true})
	require.NoError(t, err)
	assert.True(t, got.SyncEnabled)

	require.NoError(t, settings.Save(domain.Settings{SyncEnabled: false}))

	// A saved record beats the defaults.
	got, err = settings.Load(domain.Settings{SyncEnabled: true})
	require.NoError(t, err)
	assert.False(t, got.SyncEnabled)
}
