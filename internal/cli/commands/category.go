package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
)

type catAddCmd struct{}

func (catAddCmd) Name() string        { return "cat-add" }
func (catAddCmd) Description() string { return "Add a category" }
func (catAddCmd) Usage() string       { return "cat-add <name> [color]" }

func (catAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	cat, err := ws.Local.AddCategory(args[0], optArg(args, 1))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Added category %s (%s)\n", cat.Name, cat.ID)
	return nil
}

type catEditCmd struct{}

func (catEditCmd) Name() string        { return "cat-edit" }
func (catEditCmd) Description() string { return "Rename or recolor a category" }
func (catEditCmd) Usage() string       { return "cat-edit <category-id> <name> [color]" }

func (catEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.UpdateCategory(args[0], args[1], optArg(args, 2)); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Updated category %s\n", args[0])
	return nil
}

type catRmCmd struct{}

func (catRmCmd) Name() string        { return "cat-rm" }
func (catRmCmd) Description() string { return "Delete a category and its bookmarks" }
func (catRmCmd) Usage() string       { return "cat-rm <category-id>" }

func (catRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.DeleteCategory(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted category %s\n", args[0])
	return nil
}

type catLsCmd struct{}

func (catLsCmd) Name() string        { return "cat-ls" }
func (catLsCmd) Description() string { return "List categories and their bookmarks" }
func (catLsCmd) Usage() string       { return "cat-ls" }

func (catLsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	doc := ws.Local.Snapshot()
	if len(doc.Categories) == 0 {
		fmt.Fprintln(Out, "No categories")
		return nil
	}
	tagNames := make(map[string]string, len(doc.Tags))
	for _, t := range doc.Tags {
		tagNames[t.ID] = t.Name
	}
	for i, cat := range doc.Categories {
		fmt.Fprintf(Out, "[%d] %s (%s)", i, cat.Name, cat.ID)
		if cat.Color != "" {
			fmt.Fprintf(Out, " %s", cat.Color)
		}
		fmt.Fprintln(Out)
		for j, bm := range cat.Bookmarks {
			fmt.Fprintf(Out, "  [%d] %s  %s  (%s)", j, bm.Name, bm.URL, bm.ID)
			for _, ref := range bm.Tags {
				if name, ok := tagNames[ref]; ok {
					fmt.Fprintf(Out, " #%s", name)
				}
			}
			fmt.Fprintln(Out)
		}
	}
	return nil
}

type catMvCmd struct{}

func (catMvCmd) Name() string        { return "cat-mv" }
func (catMvCmd) Description() string { return "Move a category to another position" }
func (catMvCmd) Usage() string       { return "cat-mv <from-index> <to-index>" }

func (catMvCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return ErrUsage
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.ReorderCategories(from, to); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Moved category %d -> %d\n", from, to)
	return nil
}

// optArg returns args[i] when present, otherwise "".
func optArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func init() {
	RegisterCmd(catAddCmd{})
	RegisterCmd(catEditCmd{})
	RegisterCmd(catRmCmd{})
	RegisterCmd(catLsCmd{})
	RegisterCmd(catMvCmd{})
}
