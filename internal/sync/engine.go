// Package sync reconciles the local bookmark document against a remote
// mirror with a last-write-wins policy keyed by the document timestamp.
//
// Known limitation, inherited deliberately: conflict resolution is
// last-write-wins at whole-document granularity. Two sessions editing
// between syncs lose the older side's changes entirely, including
// unrelated categories. There is no field-level merge and no conflict
// surfacing to the user.
package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
	"github.com/linkdeckapp/linkdeck/internal/mirror"
	"github.com/linkdeckapp/linkdeck/internal/store"
)

// State is the engine's lifecycle state.
type State int

// Engine states. The only transitions are Disabled → Enabling → Enabled
// and anything → Disabled.
const (
	Disabled State = iota
	Enabling
	Enabled
)

// String implements fmt.Stringer for logs and the status command.
func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabling:
		return "enabling"
	case Enabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Engine keeps the local store and the remote mirror converged. While
// enabled it pushes on every local save and pulls on every remote change
// notification, both under the strictly-newer-wins comparison.
type Engine struct {
	mu    sync.Mutex
	state State

	local  *store.LocalStore
	remote mirror.Mirror
	logger *slog.Logger

	// pushTimeout bounds each remote write.
	pushTimeout time.Duration

	unsubscribe func()

	// Outgoing pushes coalesce into a single pending snapshot: the
	// document is always shipped whole, so only the newest state matters,
	// and a slow remote never queues an unbounded backlog. The worker
	// drains pending in the order saves produced it.
	pending    *domain.Document
	pendingMu  sync.Mutex
	pendingCh  chan struct{}
	workerStop chan struct{}
	workerWG   sync.WaitGroup
}

// NewEngine creates a sync engine for the given local store and remote.
func NewEngine(local *store.LocalStore, remote mirror.Mirror, pushTimeout time.Duration, logger *slog.Logger) *Engine {
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &Engine{
		local:       local,
		remote:      remote,
		logger:      logger,
		pushTimeout: pushTimeout,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Enable performs the initial reconciliation and starts continuous sync:
//
//  1. Fetch the remote document for this user's key.
//  2. Remote strictly newer → overwrite local (and notify the observer);
//     local newer or equal → push local. Equal timestamps mean no
//     divergence, and the initiating side wins the tie.
//  3. No remote document → push local as the initial copy.
//  4. Subscribe to the change feed.
//
// Any failure leaves the engine Disabled and local data untouched.
func (e *Engine) Enable(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Disabled {
		e.mu.Unlock()
		return nil
	}
	e.state = Enabling
	e.mu.Unlock()

	key := e.local.UserID()

	callCtx, cancel := context.WithTimeout(ctx, e.pushTimeout)
	remoteDoc, err := e.remote.GetDocument(callCtx, key)
	cancel()

	switch {
	case err == nil:
		replaced, replaceErr := e.local.ReplaceFromRemoteIfNewer(remoteDoc)
		if replaceErr != nil {
			// Local persistence failed but in-memory state is current;
			// sync can still proceed.
			e.logger.Warn("failed to persist pulled document", "error", replaceErr)
		}
		if replaced {
			e.logger.Info("local document overwritten from remote",
				"remote_modified", remoteDoc.LastModified)
		} else {
			if err := e.pushNow(ctx, key); err != nil {
				e.disableWith(err)
				return err
			}
		}
	case errors.Is(err, errors.ErrNotFound):
		if err := e.pushNow(ctx, key); err != nil {
			e.disableWith(err)
			return err
		}
	default:
		e.disableWith(err)
		return err
	}

	unsubscribe, err := e.remote.Subscribe(context.Background(), key, e.onRemoteChange)
	if err != nil {
		e.disableWith(err)
		return errors.Sync("failed to subscribe to remote changes", err)
	}

	e.mu.Lock()
	e.unsubscribe = unsubscribe
	e.pendingCh = make(chan struct{}, 1)
	e.workerStop = make(chan struct{})
	e.workerWG.Add(1)
	go e.pushWorker()
	e.state = Enabled
	e.mu.Unlock()

	e.local.AttachPropagator(e)
	e.logger.Info("sync enabled", "key", key)
	return nil
}

// Disable cancels the change subscription and stops push propagation.
// Idempotent: disabling twice, or when never enabled, is a no-op.
func (e *Engine) Disable() {
	e.mu.Lock()
	if e.state == Disabled {
		e.mu.Unlock()
		return
	}
	unsubscribe := e.unsubscribe
	workerStop := e.workerStop
	e.unsubscribe = nil
	e.workerStop = nil
	e.state = Disabled
	e.mu.Unlock()

	e.local.AttachPropagator(nil)
	if unsubscribe != nil {
		unsubscribe()
	}
	if workerStop != nil {
		close(workerStop)
		e.workerWG.Wait()
	}
	e.logger.Info("sync disabled")
}

// Push implements store.Propagator. Called by the local store after
// every save while attached. Never blocks the mutator: the snapshot is
// parked for the worker and replaces any not-yet-shipped predecessor.
func (e *Engine) Push(doc *domain.Document) {
	e.mu.Lock()
	if e.state != Enabled {
		e.mu.Unlock()
		return
	}
	pendingCh := e.pendingCh
	e.mu.Unlock()

	e.pendingMu.Lock()
	e.pending = doc
	e.pendingMu.Unlock()

	select {
	case pendingCh <- struct{}{}:
	default:
		// Worker already has a wakeup queued; it will pick up the
		// latest pending snapshot.
	}
}

// SyncNow pushes the current document immediately. Used by the CLI's
// explicit sync command.
func (e *Engine) SyncNow(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Enabled {
		e.mu.Unlock()
		return errors.Sync("sync is not enabled", nil)
	}
	e.mu.Unlock()
	return e.pushNow(ctx, e.local.UserID())
}

// pushWorker ships pending snapshots in save order. A failed push is
// logged and dropped; the next save resends the whole document anyway,
// so the remote converges on the next success. Local state is never
// rolled back.
func (e *Engine) pushWorker() {
	defer e.workerWG.Done()
	for {
		select {
		case <-e.workerStop:
			return
		case <-e.pendingCh:
			e.pendingMu.Lock()
			doc := e.pending
			e.pending = nil
			e.pendingMu.Unlock()
			if doc == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), e.pushTimeout)
			err := e.remote.PutDocument(ctx, e.local.UserID(), doc)
			cancel()
			if err != nil {
				e.logger.Warn("push failed, local edit retained",
					"error", err, "last_modified", doc.LastModified)
			}
		}
	}
}

// pushNow writes the current local snapshot to the remote synchronously.
func (e *Engine) pushNow(ctx context.Context, key string) error {
	snapshot := e.local.Snapshot()
	callCtx, cancel := context.WithTimeout(ctx, e.pushTimeout)
	defer cancel()
	if err := e.remote.PutDocument(callCtx, key, snapshot); err != nil {
		return errors.Sync("failed to push document to remote", err)
	}
	return nil
}

// onRemoteChange handles a change feed notification: overwrite local
// state only when the notified document is strictly newer than the
// now-current local state. The comparison happens inside the store's
// lock, so a notification that arrives while a mutation is in flight is
// evaluated against the completed mutation, never a torn document.
func (e *Engine) onRemoteChange(doc *domain.Document) {
	replaced, err := e.local.ReplaceFromRemoteIfNewer(doc)
	if err != nil {
		e.logger.Warn("failed to persist remote change", "error", err)
	}
	if replaced {
		e.logger.Debug("applied remote change", "remote_modified", doc.LastModified)
	}
}

// disableWith resets to Disabled after a failed enable.
func (e *Engine) disableWith(err error) {
	e.mu.Lock()
	e.state = Disabled
	e.mu.Unlock()
	e.logger.Warn("sync enable failed, staying disabled", "error", err)
}
