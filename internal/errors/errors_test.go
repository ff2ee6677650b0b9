package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := NotFoundf("category %s not found", "cat-1")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
}

func TestErrorIs_ThroughWrapping(t *testing.T) {
	inner := Conflict("username already registered")
	wrapped := fmt.Errorf("register: %w", inner)

	assert.True(t, Is(wrapped, ErrConflict))
}

func TestErrorAs(t *testing.T) {
	var domainErr *Error
	require.True(t, As(Validation("name is required"), &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, "name is required", domainErr.Message)
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Persistence("failed to save", cause)

	assert.Equal(t, cause, Unwrap(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Validation("bad"), http.StatusBadRequest},
		{OutOfRangef("index %d", 9), http.StatusBadRequest},
		{Format("bad payload"), http.StatusBadRequest},
		{Persistence("disk", nil), http.StatusInternalServerError},
		{Sync("remote", nil), http.StatusInternalServerError},
		{Internal("bug"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), "code %s", tt.err.Code)
	}
}

func TestInvalidCredentials_FixedMessage(t *testing.T) {
	// The message must not vary by cause; callers rely on that.
	assert.Equal(t, ErrInvalidCredentials.Message, InvalidCredentials().Message)
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := ErrSync.WithCause(cause)

	assert.True(t, Is(err, ErrSync))
	assert.Equal(t, cause, Unwrap(err))
}
