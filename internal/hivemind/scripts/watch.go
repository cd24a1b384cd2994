// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     scripts
// Description: fsnotify based change notification for single scripts
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package scripts

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	"github.com/msto63/hivemind/foundation/utils/filex"
	"github.com/msto63/hivemind/pkg/core/logging"
)

// ChangeFunc is called after a watched script settled on new content
type ChangeFunc func(ctx context.Context, path string)

// Watcher reports changes of one script file. The parent directory is
// watched so that editors replacing the file by rename are seen too.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *logging.Logger
}

// Watch creates a watcher for the named script. The watch is registered
// before Watch returns, so writes after it are always reported.
func (l *Library) Watch(name string) (*Watcher, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	return l.watch(path, "scripts.Watch")
}

// WatchFile creates a watcher for the file at path, taken as is: no
// extension is added and the path need not lie under the library root.
func (l *Library) WatchFile(path string) (*Watcher, error) {
	return l.watch(filepath.Clean(path), "scripts.WatchFile")
}

func (l *Library) watch(path, op string) (*Watcher, error) {
	dir := filepath.Dir(path)
	if !filex.IsDir(dir) {
		return nil, hmerror.New("script directory does not exist").
			WithCode(hmerror.CodeNotFound).
			WithOperation(op).
			WithDetail("dir", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to create watcher").
			WithCode(hmerror.CodeIOError).
			WithOperation(op)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, hmerror.Wrap(err, "failed to watch directory").
			WithCode(hmerror.CodeIOError).
			WithOperation(op).
			WithDetail("dir", dir)
	}

	l.logger.Info("Started watching script", "path", path)
	return &Watcher{
		path:     path,
		debounce: l.debounce,
		fsw:      fsw,
		logger:   l.logger,
	}, nil
}

// Path returns the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change notifications until ctx is cancelled or Close is
// called. Bursts of events within the debounce period collapse into one call.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.fsw.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping script watcher (context cancelled)")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create:
				w.logger.Debug("Script event", "op", event.Op.String())
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
				fire = timer.C

			case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
				w.logger.Warn("Script removed, waiting for it to reappear", "path", w.path)
			}

		case <-fire:
			fire = nil
			if filex.IsFile(w.path) {
				w.logger.Info("Script changed", "path", w.path)
				onChange(ctx, w.path)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// Close stops the watcher; a running Run returns
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
