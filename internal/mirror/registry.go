package mirror

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"encoding/json/v2"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// Registry accesses the credential registry hosted by mirrord. It
// satisfies the identity provider's registry interface, so the client
// registers and logs in against the shared remote record the same way
// the original single-store design did.
type Registry struct {
	mirror *HTTPMirror
}

// NewRegistry creates a remote credential registry over the mirror client.
func NewRegistry(m *HTTPMirror) *Registry {
	return &Registry{mirror: m}
}

// Get returns the credential record for a user id, or errors.ErrNotFound.
func (r *Registry) Get(userID string) (*domain.Credential, error) {
	resp, err := r.mirror.client.Get(r.userURL(userID))
	if err != nil {
		return nil, errors.Sync("remote unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var env envelope
		if err := json.UnmarshalRead(resp.Body, &env); err != nil {
			return nil, errors.Sync("failed to decode credential record", err)
		}
		var cred domain.Credential
		if err := json.Unmarshal(env.Data, &cred); err != nil {
			return nil, errors.Sync("failed to decode credential record", err)
		}
		return &cred, nil
	case http.StatusNotFound:
		return nil, errors.NotFoundf("no credential record for %s", userID)
	default:
		return nil, errors.Sync(fmt.Sprintf("remote returned status %d", resp.StatusCode), nil)
	}
}

// Put creates the credential record; an existing record is a conflict.
func (r *Registry) Put(userID string, cred *domain.Credential) error {
	body, err := json.Marshal(cred)
	if err != nil {
		return errors.Sync("failed to encode credential record", err)
	}
	req, err := http.NewRequest(http.MethodPut, r.userURL(userID), bytes.NewReader(body))
	if err != nil {
		return errors.Sync("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.mirror.client.Do(req)
	if err != nil {
		return errors.Sync("remote unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusConflict:
		return errors.Conflict("username already registered")
	default:
		return errors.Sync(fmt.Sprintf("remote returned status %d", resp.StatusCode), nil)
	}
}

func (r *Registry) userURL(userID string) string {
	return r.mirror.baseURL + "/api/v1/users/" + userID
}
