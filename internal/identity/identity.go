// Package identity derives user identities and runs the credential flow.
//
// The scheme is deliberately simple: the user id is a deterministic
// transformation of the username, and the stored credential is an
// unsalted SHA-256 digest of the password compared by equality. That is
// a known weakness kept for compatibility with existing stored
// credentials; this is not a hardened authentication system.
package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// UserIDPrefix namespaces derived user ids in every key space.
const UserIDPrefix = "user_"

// Registry is the credential registry collaborator. Get returns
// errors.ErrNotFound when no record exists; Put is create-only and
// returns errors.ErrConflict for an existing record.
type Registry interface {
	Get(userID string) (*domain.Credential, error)
	Put(userID string, cred *domain.Credential) error
}

// SessionStore persists the single local session marker.
type SessionStore interface {
	Load() (*domain.Session, error)
	Save(sess *domain.Session) error
	Clear() error
}

var validate = validator.New()

// registerRequest carries the validation rules for registration input.
type registerRequest struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=4"`
}

// Provider runs registration, login, and logout against a credential
// registry, and owns the persisted session marker.
type Provider struct {
	registry Registry
	sessions SessionStore
	logger   *slog.Logger
}

// NewProvider creates an identity provider.
func NewProvider(registry Registry, sessions SessionStore, logger *slog.Logger) *Provider {
	return &Provider{
		registry: registry,
		sessions: sessions,
		logger:   logger,
	}
}

// DeriveUserID maps a username to its stable user id: lowercase, with
// every character outside [a-z0-9] replaced by an underscore, behind the
// user_ namespace prefix. Deterministic and pure.
func DeriveUserID(username string) string {
	lowered := strings.ToLower(username)
	var b strings.Builder
	b.Grow(len(UserIDPrefix) + len(lowered))
	b.WriteString(UserIDPrefix)
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// HashCredential returns the hex-encoded SHA-256 digest of the password.
func HashCredential(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a credential record for the username and establishes
// the local session. Fails with a validation error for a short or empty
// username/password, and with a conflict when the derived id is taken.
func (p *Provider) Register(username, password string) (string, error) {
	if err := validate.Struct(registerRequest{Username: username, Password: password}); err != nil {
		return "", validationError(err)
	}

	userID := DeriveUserID(username)
	cred := &domain.Credential{
		Username:     username,
		PasswordHash: HashCredential(password),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.registry.Put(userID, cred); err != nil {
		return "", err
	}

	if err := p.establishSession(username, userID); err != nil {
		return "", err
	}
	p.logger.Info("user registered", "user_id", userID)
	return userID, nil
}

// Login verifies the credential and establishes the local session. The
// failure is identical whether the user is unknown or the password is
// wrong, to avoid user enumeration.
func (p *Provider) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.Validation("username and password are required")
	}

	userID := DeriveUserID(username)
	cred, err := p.registry.Get(userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.InvalidCredentials()
		}
		return "", err
	}

	digest := HashCredential(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(cred.PasswordHash)) != 1 {
		return "", errors.InvalidCredentials()
	}

	if err := p.establishSession(username, userID); err != nil {
		return "", err
	}
	p.logger.Info("user logged in", "user_id", userID)
	return userID, nil
}

// Logout clears the session marker. The document and the credential
// record are untouched; the collection is detached, not deleted.
func (p *Provider) Logout() error {
	if err := p.sessions.Clear(); err != nil {
		return err
	}
	p.logger.Info("user logged out")
	return nil
}

// Current returns the active session, or errors.ErrNotFound when nobody
// is logged in.
func (p *Provider) Current() (*domain.Session, error) {
	return p.sessions.Load()
}

func (p *Provider) establishSession(username, userID string) error {
	return p.sessions.Save(&domain.Session{
		Username: username,
		UserID:   userID,
		LoginAt:  time.Now().UTC(),
	})
}

// validationError flattens a validator error into the domain taxonomy
// with a user-facing message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Validation("invalid input")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.Validationf("%s is required", field)
	case "min":
		return errors.Validationf("%s must be at least %s characters", field, fe.Param())
	default:
		return errors.Validationf("%s is invalid", field)
	}
}
