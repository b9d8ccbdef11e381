// Package watch reports when a single file has been rewritten and has
// stopped changing.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultSettleDelay is how long a file must stay unchanged before a change
// is reported.
const DefaultSettleDelay = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// SettleDelay defaults to DefaultSettleDelay.
	SettleDelay time.Duration
	Logger      hclog.Logger
}

// Watcher watches one file. Editors often replace a file rather than write
// it in place, so the parent directory is watched and events are filtered
// by name.
type Watcher struct {
	path    string
	opts    Options
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	size    int64
	modTime time.Time
}

// New creates a Watcher for path, which must exist.
func New(path string, opts Options) (*Watcher, error) {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, opts: opts, watcher: w}, nil
}

// Run calls onChange each time the file settles after a write, until ctx is
// cancelled. onChange is never called concurrently with itself.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	settled := make(chan struct{}, 1)
	logger := w.opts.Logger

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case <-settled:
			logger.Debug("file changed", "path", w.path)
			onChange()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.startSettling(settled)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

// startSettling restarts the settle timer for the watched file.
func (w *Watcher) startSettling(settled chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.size, w.modTime = w.stat()
	w.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(settled)
	})
}

// checkSettled reports the change if the file is unchanged since the timer
// started, and otherwise waits again.
func (w *Watcher) checkSettled(settled chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	size, modTime := w.stat()
	if size < 0 {
		// Removed or mid-replace; a later Create restarts settling.
		w.timer = nil
		return
	}
	if size != w.size || !modTime.Equal(w.modTime) {
		w.size, w.modTime = size, modTime
		w.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(settled)
		})
		return
	}

	w.timer = nil
	select {
	case settled <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) stat() (int64, time.Time) {
	info, err := os.Stat(w.path)
	if err != nil {
		return -1, time.Time{}
	}
	return info.Size(), info.ModTime()
}
