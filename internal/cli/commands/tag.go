package commands

import (
	"context"
	"fmt"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
)

type tagAddCmd struct{}

func (tagAddCmd) Name() string        { return "tag-add" }
func (tagAddCmd) Description() string { return "Create a tag" }
func (tagAddCmd) Usage() string       { return "tag-add <name> [color]" }

func (tagAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	tag, err := ws.Local.AddTag(args[0], optArg(args, 1))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Added tag %s (%s)\n", tag.Name, tag.ID)
	return nil
}

type tagEditCmd struct{}

func (tagEditCmd) Name() string        { return "tag-edit" }
func (tagEditCmd) Description() string { return "Rename or recolor a tag" }
func (tagEditCmd) Usage() string       { return "tag-edit <tag-id> <name> [color]" }

func (tagEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.UpdateTag(args[0], args[1], optArg(args, 2)); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Updated tag %s\n", args[0])
	return nil
}

type tagRmCmd struct{}

func (tagRmCmd) Name() string        { return "tag-rm" }
func (tagRmCmd) Description() string { return "Delete a tag and detach it everywhere" }
func (tagRmCmd) Usage() string       { return "tag-rm <tag-id>" }

func (tagRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.DeleteTag(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted tag %s\n", args[0])
	return nil
}

type tagLsCmd struct{}

func (tagLsCmd) Name() string        { return "tag-ls" }
func (tagLsCmd) Description() string { return "List tags" }
func (tagLsCmd) Usage() string       { return "tag-ls" }

func (tagLsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	doc := ws.Local.Snapshot()
	if len(doc.Tags) == 0 {
		fmt.Fprintln(Out, "No tags")
		return nil
	}
	for _, t := range doc.Tags {
		fmt.Fprintf(Out, "- %s (%s)", t.Name, t.ID)
		if t.Color != "" {
			fmt.Fprintf(Out, " %s", t.Color)
		}
		fmt.Fprintln(Out)
	}
	return nil
}

type tagCmd struct{}

func (tagCmd) Name() string        { return "tag" }
func (tagCmd) Description() string { return "Attach a tag to a bookmark" }
func (tagCmd) Usage() string       { return "tag <category-id> <bookmark-id> <tag-id>" }

func (tagCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.TagBookmark(args[0], args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Tagged bookmark %s with %s\n", args[1], args[2])
	return nil
}

type untagCmd struct{}

func (untagCmd) Name() string        { return "untag" }
func (untagCmd) Description() string { return "Detach a tag from a bookmark" }
func (untagCmd) Usage() string       { return "untag <category-id> <bookmark-id> <tag-id>" }

func (untagCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.UntagBookmark(args[0], args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Untagged bookmark %s from %s\n", args[1], args[2])
	return nil
}

func init() {
	RegisterCmd(tagAddCmd{})
	RegisterCmd(tagEditCmd{})
	RegisterCmd(tagRmCmd{})
	RegisterCmd(tagLsCmd{})
	RegisterCmd(tagCmd{})
	RegisterCmd(untagCmd{})
}
