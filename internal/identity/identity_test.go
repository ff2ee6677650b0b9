package identity

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// fakeRegistry is an in-memory credential registry with the create-only
// contract.
type fakeRegistry struct {
	records map[string]*domain.Credential
}

func (r *fakeRegistry) Get(userID string) (*domain.Credential, error) {
	cred, ok := r.records[userID]
	if !ok {
		return nil, errors.NotFoundf("no credential record for %s", userID)
	}
	return cred, nil
}

func (r *fakeRegistry) Put(userID string, cred *domain.Credential) error {
	if _, ok := r.records[userID]; ok {
		return errors.Conflict("username already registered")
	}
	r.records[userID] = cred
	return nil
}

// fakeSessions holds the session marker in memory.
type fakeSessions struct {
	sess *domain.Session
}

func (s *fakeSessions) Load() (*domain.Session, error) {
	if s.sess == nil {
		return nil, errors.NotFound("no active session")
	}
	return s.sess, nil
}

func (s *fakeSessions) Save(sess *domain.Session) error { s.sess = sess; return nil }
func (s *fakeSessions) Clear() error                    { s.sess = nil; return nil }

func setupProvider(t *testing.T) (*Provider, *fakeRegistry, *fakeSessions) {
	t.Helper()
	reg := &fakeRegistry{records: make(map[string]*domain.Credential)}
	sessions := &fakeSessions{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProvider(reg, sessions, logger), reg, sessions
}

func TestDeriveUserID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "user_alice"},
		{"Alice", "user_alice"},
		{"bob42", "user_bob42"},
		{"john.doe", "user_john_doe"},
		{"Jean-Luc", "user_jean_luc"},
		{"a b c", "user_a_b_c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveUserID(tt.in), "input %q", tt.in)
	}
}

func TestHashCredential_Deterministic(t *testing.T) {
	digest := HashCredential("hunter22")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashCredential("hunter22"))
	assert.NotEqual(t, digest, HashCredential("hunter23"))
}

func TestRegister_EstablishesSession(t *testing.T) {
	p, reg, sessions := setupProvider(t)

	userID, err := p.Register("Alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "user_alice", userID)

	// Stored digest, never the password.
	cred := reg.records["user_alice"]
	require.NotNil(t, cred)
	assert.Equal(t, HashCredential("hunter22"), cred.PasswordHash)
	assert.NotContains(t, cred.PasswordHash, "hunter22")

	sess, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Username)
	assert.Equal(t, "user_alice", sess.UserID)
}

func TestRegister_ValidationBoundaries(t *testing.T) {
	p, _, _ := setupProvider(t)

	// Exactly at the minimums is accepted.
	_, err := p.Register("abc", "1234")
	require.NoError(t, err)

	// One below each minimum is rejected.
	_, err = p.Register("ab", "longenough")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = p.Register("validname", "123")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = p.Register("", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	p, _, _ := setupProvider(t)

	_, err := p.Register("alice", "hunter22")
	require.NoError(t, err)

	// Same derived id, different casing.
	_, err = p.Register("ALICE", "different")
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestLogin(t *testing.T) {
	p, _, sessions := setupProvider(t)
	_, err := p.Register("alice", "hunter22")
	require.NoError(t, err)
	require.NoError(t, p.Logout())

	userID, err := p.Login("alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "user_alice", userID)

	sess, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "user_alice", sess.UserID)
}

func TestLogin_GenericFailureMessage(t *testing.T) {
	p, _, _ := setupProvider(t)
	_, err := p.Register("alice", "hunter22")
	require.NoError(t, err)

	// Unknown user and wrong password fail identically, so a caller
	// cannot probe which usernames exist.
	_, unknownErr := p.Login("nobody", "whatever")
	_, wrongErr := p.Login("alice", "wrong")

	assert.True(t, errors.Is(unknownErr, errors.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongErr, errors.ErrInvalidCredentials))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_EmptyInput(t *testing.T) {
	p, _, _ := setupProvider(t)

	_, err := p.Login("", "password")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = p.Login("alice", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestLogout_ClearsSessionOnly(t *testing.T) {
	p, reg, sessions := setupProvider(t)
	_, err := p.Register("alice", "hunter22")
	require.NoError(t, err)

	require.NoError(t, p.Logout())

	_, err = sessions.Load()
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	// The credential record survives; logout detaches, it does not delete.
	assert.Contains(t, reg.records, "user_alice")

	// Logging out twice is fine.
	require.NoError(t, p.Logout())
}

func TestCurrent(t *testing.T) {
	p, _, _ := setupProvider(t)

	_, err := p.Current()
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = p.Register("alice", "hunter22")
	require.NoError(t, err)

	sess, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "user_alice", sess.UserID)
}
