// Package bootstrap opens the client-side stores and wires the core for
// one CLI invocation: database, session, local document store, identity
// provider, and (when a remote is configured) the sync engine.
package bootstrap

import (
	"context"
	"path/filepath"

	"github.com/linkdeckapp/linkdeck/internal/config"
	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/identity"
	"github.com/linkdeckapp/linkdeck/internal/logger"
	"github.com/linkdeckapp/linkdeck/internal/mirror"
	"github.com/linkdeckapp/linkdeck/internal/store"
	"github.com/linkdeckapp/linkdeck/internal/sync"
)

// NewLogger builds the CLI logger from config.
func NewLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   false,
		Environment: cfg.App.Environment,
	})
}

// OpenStore opens the client database and returns (store, cleanup, error).
// cleanup must be called once the invocation is done.
func OpenStore(cfg *config.Config, log *logger.Logger) (*store.Store, func(), error) {
	dbPath := filepath.Join(cfg.Data.BasePath, "client")
	kv, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := kv.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
	return kv, cleanup, nil
}

// NewIdentity builds the identity provider. With a remote configured the
// credential registry lives on the mirror, so a username registered from
// one device is taken on every other; without one, registration is
// purely local.
func NewIdentity(cfg *config.Config, kv *store.Store, log *logger.Logger) *identity.Provider {
	var registry identity.Registry
	if cfg.Remote.URL != "" {
		registry = mirror.NewRegistry(mirror.NewHTTPMirror(cfg.Remote.URL, cfg.Remote.RequestTimeout, log.Logger))
	} else {
		registry = store.NewCredentialRegistry(kv)
	}
	return identity.NewProvider(registry, store.NewSessions(kv), log.Logger)
}

// Workspace is everything a logged-in command needs.
type Workspace struct {
	Session *domain.Session
	Local   *store.LocalStore
	Engine  *sync.Engine

	log     *logger.Logger
	cleanup func()
}

// OpenWorkspace opens the store for the active session and, when sync is
// configured, enables the sync engine. A failed enable is reported but
// does not block the invocation: edits land locally and ship on the next
// successful sync.
func OpenWorkspace(ctx context.Context, cfg *config.Config) (*Workspace, error) {
	log := NewLogger(cfg)
	kv, cleanup, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}

	sess, err := store.NewSessions(kv).Load()
	if err != nil {
		cleanup()
		return nil, err
	}

	local := store.NewLocalStore(kv, sess.UserID, log.Logger)

	ws := &Workspace{
		Session: sess,
		Local:   local,
		log:     log,
		cleanup: cleanup,
	}

	if SyncPreferred(cfg, kv) && cfg.Remote.URL != "" {
		remote := mirror.NewHTTPMirror(cfg.Remote.URL, cfg.Remote.RequestTimeout, log.Logger)
		engine := sync.NewEngine(local, remote, cfg.Remote.RequestTimeout, log.Logger)
		if err := engine.Enable(ctx); err != nil {
			log.Warn("remote sync unavailable, working locally", "error", err)
		} else {
			ws.Engine = engine
		}
	}

	return ws, nil
}

// SyncPreferred reports whether sync should run for this invocation.
// The persisted toggle ("sync on"/"sync off") wins over the config
// default.
func SyncPreferred(cfg *config.Config, kv *store.Store) bool {
	defaults := domain.Settings{SyncEnabled: cfg.Remote.SyncEnabled}
	settings, err := store.NewSettingsStore(kv).Load(defaults)
	if err != nil {
		return cfg.Remote.SyncEnabled
	}
	return settings.SyncEnabled
}

// EnableSync builds and enables the engine for this invocation even
// when the persisted toggle is off. No-op when already enabled.
func (w *Workspace) EnableSync(ctx context.Context, cfg *config.Config) error {
	if w.Engine != nil {
		return nil
	}
	remote := mirror.NewHTTPMirror(cfg.Remote.URL, cfg.Remote.RequestTimeout, w.log.Logger)
	engine := sync.NewEngine(w.Local, remote, cfg.Remote.RequestTimeout, w.log.Logger)
	if err := engine.Enable(ctx); err != nil {
		return err
	}
	w.Engine = engine
	return nil
}

// Close flushes the last edit to the remote and releases everything.
// The engine's background worker may not have shipped the final save of
// a short-lived invocation yet, so a synchronous push runs first.
func (w *Workspace) Close(ctx context.Context) {
	if w.Engine != nil {
		if err := w.Engine.SyncNow(ctx); err != nil {
			w.log.Warn("final push failed, edit retained locally", "error", err)
		}
		w.Engine.Disable()
	}
	w.cleanup()
}
