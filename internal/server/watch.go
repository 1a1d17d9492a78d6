package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the watcher waits after the last filesystem
// event on a file before acting on it. Editors often write in several steps.
const DefaultSettle = 50 * time.Millisecond

// Watcher follows a source document and, optionally, a config file on disk.
// Source writes are fed to OnSource; config writes to OnConfig.
type Watcher struct {
	Source string
	Config string

	OnSource func(path, text string)
	OnConfig func(path string)

	Settle time.Duration
	Log    *slog.Logger
}

// Run watches until ctx is cancelled. The parent directories are watched
// rather than the files so atomic saves (write temp, rename) are seen.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Source == "" {
		return errors.New("watcher: no source file")
	}
	log := w.Log
	if log == nil {
		log = slog.Default()
	}
	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	source, err := filepath.Abs(w.Source)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.Source, err)
	}
	var config string
	if w.Config != "" {
		if config, err = filepath.Abs(w.Config); err != nil {
			return fmt.Errorf("resolving %s: %w", w.Config, err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dirs := map[string]bool{filepath.Dir(source): true}
	if config != "" {
		dirs[filepath.Dir(config)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.Debug("watching", "source", source, "config", config)

	// Pending events per file, coalesced over the settle window.
	pending := make(map[string]*time.Timer)
	fired := make(chan string, 4)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if name != source && name != config {
				continue
			}
			if t, ok := pending[name]; ok {
				t.Reset(settle)
				continue
			}
			pending[name] = time.AfterFunc(settle, func() {
				select {
				case fired <- name:
				case <-ctx.Done():
				}
			})

		case name := <-fired:
			delete(pending, name)
			w.dispatch(log, name, source, config)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) dispatch(log *slog.Logger, name, source, config string) {
	switch name {
	case source:
		data, err := os.ReadFile(source) // #nosec G304 -- path supplied by the user
		if err != nil {
			// Mid-rename; the Create that follows retries.
			log.Debug("reading source", "path", source, "error", err)
			return
		}
		if w.OnSource != nil {
			w.OnSource(source, string(data))
		}
	case config:
		if w.OnConfig != nil {
			w.OnConfig(config)
		}
	}
}
