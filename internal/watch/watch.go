// Package watch turns file system changes into calls of a debounced
// function, so a burst of writes results in a single sync.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Watcher reports changed files below a set of paths, skipping ignored ones.
type Watcher struct {
	paths    []string
	ignore   []string
	onChange func(path string)
	fsw      *fsnotify.Watcher
}

// New creates a Watcher for paths. onChange receives the path of every
// relevant event; pass a debounced function to coalesce bursts.
func New(paths, ignore []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	return &Watcher{
		paths:    paths,
		ignore:   ignore,
		onChange: onChange,
		fsw:      fsw,
	}, nil
}

// Run watches until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "watch").Logger()
	defer w.fsw.Close()

	for _, path := range w.paths {
		if err := w.addRecursive(path); err != nil {
			return errors.Wrapf(err, "failed to watch path %s", path)
		}
	}
	logger.Info().Strs("paths", w.paths).Msg("watcher started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("context ended, exiting watcher")
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(logger, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(logger zerolog.Logger, event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change")
		w.onChange(event.Name)
	}

	if event.Op&fsnotify.Create != 0 {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(info.Name(), ".") || w.shouldIgnore(path)) {
			return filepath.SkipDir
		}

		return w.fsw.Add(path)
	})
}

// shouldIgnore reports whether any element of path matches an ignore
// pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		for _, pattern := range w.ignore {
			if matched, err := filepath.Match(pattern, elem); err == nil && matched {
				return true
			}
		}
	}

	return false
}
