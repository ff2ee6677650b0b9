package commands

import (
	"context"
	"fmt"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
	"github.com/linkdeckapp/linkdeck/internal/errors"
	"github.com/linkdeckapp/linkdeck/internal/store"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string       { return "register <username> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	log := bootstrap.NewLogger(cfg)
	kv, done, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer done()

	userID, err := bootstrap.NewIdentity(cfg, kv, log).Register(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Registered and logged in as %s (%s)\n", args[0], userID)
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Log in with an existing account" }
func (loginCmd) Usage() string       { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	log := bootstrap.NewLogger(cfg)
	kv, done, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer done()

	userID, err := bootstrap.NewIdentity(cfg, kv, log).Login(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Logged in as %s (%s)\n", args[0], userID)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Log out; bookmarks stay on disk" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.NewLogger(cfg)
	kv, done, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer done()

	if err := bootstrap.NewIdentity(cfg, kv, log).Logout(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show session and sync status" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	log := bootstrap.NewLogger(cfg)
	kv, done, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer done()

	sess, err := store.NewSessions(kv).Load()
	if errors.Is(err, errors.ErrNotFound) {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(Out, "Logged in as %s (%s) since %s\n",
		sess.Username, sess.UserID, sess.LoginAt.Format("2006-01-02 15:04:05"))
	switch {
	case cfg.Remote.URL == "":
		fmt.Fprintln(Out, "Sync: no remote configured")
	case !bootstrap.SyncPreferred(cfg, kv):
		fmt.Fprintf(Out, "Sync: disabled (remote %s)\n", cfg.Remote.URL)
	default:
		fmt.Fprintf(Out, "Sync: enabled (remote %s)\n", cfg.Remote.URL)
	}
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(statusCmd{})
}
