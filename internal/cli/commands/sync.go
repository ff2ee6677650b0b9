package commands

import (
	"context"
	"fmt"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/store"
)

type syncCmd struct{}

func (syncCmd) Name() string        { return "sync" }
func (syncCmd) Description() string { return "Reconcile with the remote mirror, or toggle syncing" }
func (syncCmd) Usage() string       { return "sync [on|off|now]" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	mode := "now"
	switch len(args) {
	case 0:
	case 1:
		mode = args[0]
	default:
		return ErrUsage
	}

	if cfg.Remote.URL == "" {
		return fmt.Errorf("no remote configured (set LINKDECK_REMOTE_URL or --remote-url)")
	}

	switch mode {
	case "on":
		return setSyncPreference(cfg, true)
	case "off":
		return setSyncPreference(cfg, false)
	case "now":
		return syncNow(ctx, cfg)
	default:
		return ErrUsage
	}
}

// setSyncPreference persists the toggle; it takes effect on every
// following invocation.
func setSyncPreference(cfg *config.Config, enabled bool) error {
	log := bootstrap.NewLogger(cfg)
	kv, done, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer done()

	if err := store.NewSettingsStore(kv).Save(domain.Settings{SyncEnabled: enabled}); err != nil {
		return err
	}
	if enabled {
		fmt.Fprintf(Out, "Sync enabled (remote %s); run \"sync\" to reconcile now\n", cfg.Remote.URL)
	} else {
		fmt.Fprintln(Out, "Sync disabled; edits stay local")
	}
	return nil
}

// syncNow reconciles once, regardless of the persisted toggle.
func syncNow(ctx context.Context, cfg *config.Config) error {
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.EnableSync(ctx, cfg); err != nil {
		return fmt.Errorf("remote unreachable, nothing synced: %w", err)
	}
	if err := ws.Engine.SyncNow(ctx); err != nil {
		return err
	}
	doc := ws.Local.Snapshot()
	fmt.Fprintf(Out, "Synced (document modified %s)\n", doc.LastModified.Format("2006-01-02 15:04:05"))
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
