// Package watch watches a file or directory for changes and reformats in place when they occur.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bracefmt/bracefmt/format"
)

// Config configures a Watcher.
type Config struct {
	Path   string    // file or directory to watch
	Debug  bool      // enable debug logging
	Stdout io.Writer // output for status messages
	Stderr io.Writer // output for error logging
}

// Watcher watches a file or directory and reformats changed files in place.
type Watcher struct {
	path   string
	isDir  bool
	stdout io.Writer
	logger *slog.Logger
	fmtr   *format.Formatter
}

// New creates a Watcher over path, reformatting with fmtr whenever a target-language file under
// path changes.
func New(cfg Config, fmtr *format.Formatter) (*Watcher, error) {
	fi, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("file error: %v", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cfg.Stderr, &slog.HandlerOptions{Level: level}))
	return &Watcher{
		path:   cfg.Path,
		isDir:  fi.IsDir(),
		stdout: cfg.Stdout,
		logger: logger,
		fmtr:   fmtr,
	}, nil
}

// Watch blocks, reformatting affected files as they change, until ctx is cancelled.
func (wa *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(wa.path); err != nil {
		return fmt.Errorf("failed to watch %s: %v", wa.path, err)
	}
	_, _ = fmt.Fprintf(wa.stdout, "watching %s\n", wa.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			wa.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			wa.logger.Error("watcher error", "error", err)
		}
	}
}

func (wa *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Ext(event.Name) != ".kt" {
		return
	}
	wa.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
	if err := wa.fmtr.File(event.Name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		wa.logger.Error("failed to format", "file", event.Name, "error", err)
		return
	}
	_, _ = fmt.Fprintf(wa.stdout, "reformatted %s\n", event.Name)
}
