package store

import (
	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// CredentialRegistry is a badger-backed credential registry. The remote
// mirror server uses the same layout, so a client running without a
// remote keeps the identical registration semantics against its local
// database.
type CredentialRegistry struct {
	kv *Store
}

// NewCredentialRegistry creates a registry over the given store.
func NewCredentialRegistry(kv *Store) *CredentialRegistry {
	return &CredentialRegistry{kv: kv}
}

// Get returns the credential record for a user id, or errors.ErrNotFound.
func (r *CredentialRegistry) Get(userID string) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.kv.Get(CredentialKey(userID), &cred)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, errors.NotFoundf("no credential record for %s", userID)
	}
	if err != nil {
		return nil, errors.Persistence("failed to read credential record", err)
	}
	return &cred, nil
}

// Put creates the credential record. Registration is create-only:
// writing over an existing record fails with a conflict.
func (r *CredentialRegistry) Put(userID string, cred *domain.Credential) error {
	created, err := r.kv.SetIfAbsent(CredentialKey(userID), cred)
	if err != nil {
		return errors.Persistence("failed to write credential record", err)
	}
	if !created {
		return errors.Conflict("username already registered")
	}
	return nil
}

// Sessions persists the single local session marker.
type Sessions struct {
	kv *Store
}

// NewSessions creates a session store over the given store.
func NewSessions(kv *Store) *Sessions {
	return &Sessions{kv: kv}
}

// Load returns the active session, or errors.ErrNotFound when nobody is
// logged in.
func (s *Sessions) Load() (*domain.Session, error) {
	var sess domain.Session
	err := s.kv.Get(SessionKey(), &sess)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, errors.NotFound("no active session")
	}
	if err != nil {
		return nil, errors.Persistence("failed to read session", err)
	}
	return &sess, nil
}

// Save records the active session.
func (s *Sessions) Save(sess *domain.Session) error {
	if err := s.kv.Set(SessionKey(), sess); err != nil {
		return errors.Persistence("failed to write session", err)
	}
	return nil
}

// Clear removes the session marker. Clearing an absent session is fine.
func (s *Sessions) Clear() error {
	if err := s.kv.Delete(SessionKey()); err != nil {
		return errors.Persistence("failed to clear session", err)
	}
	return nil
}
