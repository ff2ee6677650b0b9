package commands

import (
	"context"
	"fmt"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
	"github.com/linkdeckapp/linkdeck/internal/query"
)

type searchCmd struct{}

func (searchCmd) Name() string        { return "search" }
func (searchCmd) Description() string { return "Search bookmarks by name, URL, or description" }
func (searchCmd) Usage() string       { return "search <query>" }

func (searchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	printMatches(query.Search(ws.Local.Snapshot(), args[0]))
	return nil
}

type filterCmd struct{}

func (filterCmd) Name() string        { return "filter" }
func (filterCmd) Description() string { return "List bookmarks carrying a tag" }
func (filterCmd) Usage() string       { return "filter <tag-id>" }

func (filterCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	printMatches(query.FilterByTag(ws.Local.Snapshot(), args[0]))
	return nil
}

type statsCmd struct{}

func (statsCmd) Name() string        { return "stats" }
func (statsCmd) Description() string { return "Show category and bookmark counts" }
func (statsCmd) Usage() string       { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	stats := query.GetStats(ws.Local.Snapshot())
	fmt.Fprintf(Out, "%d categories, %d bookmarks\n", stats.CategoryCount, stats.BookmarkCount)
	return nil
}

func printMatches(matches []query.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(Out, "No matches")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(Out, "- %s  %s  (%s, in %s)\n",
			m.Bookmark.Name, m.Bookmark.URL, m.Bookmark.ID, m.Category.Name)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(matches))
}

func init() {
	RegisterCmd(searchCmd{})
	RegisterCmd(filterCmd{})
	RegisterCmd(statsCmd{})
}
