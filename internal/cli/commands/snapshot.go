package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/linkdeckapp/linkdeck/internal/cli/bootstrap"
	"github.com/linkdeckapp/linkdeck/internal/config"
)

type exportCmd struct{}

func (exportCmd) Name() string        { return "export" }
func (exportCmd) Description() string { return "Export bookmarks to a JSON snapshot" }
func (exportCmd) Usage() string       { return "export [file]" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	data, err := ws.Local.ExportSnapshot()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(Out, string(data))
		return nil
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Fprintf(Out, "Exported to %s\n", args[0])
	return nil
}

type importCmd struct{}

func (importCmd) Name() string        { return "import" }
func (importCmd) Description() string { return "Replace bookmarks from a JSON snapshot" }
func (importCmd) Usage() string       { return "import <file>" }

func (importCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	ws, err := bootstrap.OpenWorkspace(ctx, cfg)
	if err != nil {
		return err
	}
	defer ws.Close(ctx)

	if err := ws.Local.ImportSnapshot(data); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Imported %s\n", args[0])
	return nil
}

func init() {
	RegisterCmd(exportCmd{})
	RegisterCmd(importCmd{})
}
