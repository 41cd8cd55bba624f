package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/renameio/v2"

	"github.com/eugenenazirov/board-settings/internal/settings"
)

var errUnknownSetting = errors.New("unknown setting")

// writeHeader renders the header to stdout, or atomically replaces path when set.
func writeHeader(board settings.Settings, path string, stdout io.Writer) error {
	if path == "" {
		return settings.RenderHeader(stdout, board)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending header file: %w", err)
	}
	defer func() {
		_ = pendingFile.Cleanup()
	}()

	if err := settings.RenderHeader(pendingFile, board); err != nil {
		return fmt.Errorf("write header data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace header file: %w", err)
	}
	return nil
}

// printValue prints NAME=value, marking entries of unselected variants.
func printValue(w io.Writer, board settings.Settings, name string) error {
	value, ok := settings.Lookup(board, name)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownSetting, name)
	}
	line := fmt.Sprintf("%s=%v", value.Name, value.Value)
	if !value.Active {
		line += " (inactive)"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
