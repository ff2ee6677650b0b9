package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
)

type bmAddCmd struct{}

func (bmAddCmd) Name() string        { return "bm-add" }
func (bmAddCmd) Description() string { return "Add a bookmark to a category" }
func (bmAddCmd) Usage() string       { return "bm-add <category-id> <name> <url> [description]" }

func (bmAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	bm, err := ws.Local.AddBookmark(args[0], args[1], args[2], optArg(args, 3))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Added bookmark %s -> %s (%s)\n", bm.Name, bm.URL, bm.ID)
	return nil
}

type bmEditCmd struct{}

func (bmEditCmd) Name() string        { return "bm-edit" }
func (bmEditCmd) Description() string { return "Edit a bookmark" }
func (bmEditCmd) Usage() string {
	return "bm-edit <category-id> <bookmark-id> <name> <url> [description]"
}

func (bmEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.UpdateBookmark(args[0], args[1], args[2], args[3], optArg(args, 4)); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Updated bookmark %s\n", args[1])
	return nil
}

type bmRmCmd struct{}

func (bmRmCmd) Name() string        { return "bm-rm" }
func (bmRmCmd) Description() string { return "Delete a bookmark" }
func (bmRmCmd) Usage() string       { return "bm-rm <category-id> <bookmark-id>" }

func (bmRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.DeleteBookmark(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted bookmark %s\n", args[1])
	return nil
}

type bmMvCmd struct{}

func (bmMvCmd) Name() string        { return "bm-mv" }
func (bmMvCmd) Description() string { return "Move a bookmark within its category" }
func (bmMvCmd) Usage() string       { return "bm-mv <category-id> <from-index> <to-index>" }

func (bmMvCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	from, err := strconv.Atoi(args[1])
	if err != nil {
		return ErrUsage
	}
	to, err := strconv.Atoi(args[2])
	if err != nil {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.ReorderBookmarks(args[0], from, to); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Moved bookmark %d -> %d\n", from, to)
	return nil
}

func init() {
	RegisterCmd(bmAddCmd{})
	RegisterCmd(bmEditCmd{})
	RegisterCmd(bmRmCmd{})
	RegisterCmd(bmMvCmd{})
}
