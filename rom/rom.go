// Package rom reads program images from disk and keeps them in sync with a running machine.
package rom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/guslan/chip8"
	"github.com/howeyc/fsnotify"
)

// Load reads the ROM at path. Errors are *chip8.LoadError.
func Load(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, &chip8.LoadError{Path: path, Err: err}
	}

	if len(program) > chip8.MaxProgramSize {
		return nil, &chip8.LoadError{
			Path: path,
			Err:  fmt.Errorf("%w: %d bytes, at most %d fit", chip8.ErrProgramTooLarge, len(program), chip8.MaxProgramSize),
		}
	}

	return program, nil
}

// LoadInto reads the ROM at path and loads it into the CPU, resetting it.
func LoadInto(cpu *chip8.Cpu, path string) error {
	program, err := Load(path)
	if err != nil {
		return err
	}

	if err := cpu.LoadProgram(program); err != nil {
		var loadErr *chip8.LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return err
	}

	return nil
}

// Settle is how long Watch waits for writes to stop before reloading
var Settle = 100 * time.Millisecond

// Watch calls onChange with the new contents every time the file at path is written,
// until ctx is done. Unreadable versions of the file are logged and skipped.
func Watch(ctx context.Context, path string, onChange func(program []byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// editors often replace the file, so the directory is watched
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == target && (ev.IsModify() || ev.IsCreate()) {
				reload = time.After(Settle)
			}

		case err := <-watcher.Error:
			slog.Warn("ROM watcher error", slog.Any("error", err))

		case <-reload:
			reload = nil
			program, err := Load(path)
			if err != nil {
				slog.Warn("Skipping ROM change", slog.Any("error", err))
				continue
			}
			slog.Info("ROM changed", slog.String("path", path), slog.Int("size", len(program)))
			onChange(program)
		}
	}
}
