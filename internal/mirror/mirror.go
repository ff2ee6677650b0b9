// Package mirror defines the remote document store the sync engine talks
// to, with an HTTP implementation against mirrord and an in-memory
// implementation for tests and single-machine use.
package mirror

import (
	"context"

	"github.com/linkdeckapp/linkdeck/internal/domain"
)

// Mirror is the remote document store interface. Keys are namespaced per
// user identity, separate from the credential registry's key space.
type Mirror interface {
	// GetDocument fetches the remote document for a key.
	// Returns errors.ErrNotFound when no document exists yet.
	GetDocument(ctx context.Context, key string) (*domain.Document, error)

	// PutDocument overwrites the remote document for a key. The full
	// document is sent every time; there is no delta protocol.
	PutDocument(ctx context.Context, key string, doc *domain.Document) error

	// Subscribe registers a change callback for a key and returns an
	// unsubscribe func. Unsubscribing twice is a no-op. The callback
	// receives the full updated document, including writes that
	// originated from this client. The caller is expected to suppress
	// its own echoes by timestamp comparison.
	Subscribe(ctx context.Context, key string, onChange func(doc *domain.Document)) (func(), error)
}
