// Package watcher reacts to corpus changes on disk: writes to the glossary
// database, and glossary files dropped into inbox directories. Events are
// debounced per target and dispatched from a single goroutine.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/pkg/utils"
)

const defaultDebounce = 400 * time.Millisecond

// corpusKey is the pending key shared by all database files.
const corpusKey = "\x00corpus"

// Watcher watches database files and inbox directories.
type Watcher struct {
	files      map[string]struct{}
	inboxes    []string
	extensions []string
	onChange   func()
	onFile     func(path string)
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	started  bool
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = utils.OrNop(l) }
}

// WithDebounce sets how long a target must stay quiet before its callback runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInbox watches dirs for new or changed files matching extensions and
// calls onFile for each one, including files already present at Start.
func WithInbox(dirs, extensions []string, onFile func(path string)) WatcherOption {
	return func(w *Watcher) {
		w.inboxes = append(w.inboxes, dirs...)
		w.extensions = extensions
		w.onFile = onFile
	}
}

// NewWatcher creates a watcher that calls onChange after any of files is
// written, created, renamed or removed.
func NewWatcher(files []string, onChange func(), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			w.files[filepath.Clean(abs)] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Parent directories of the watched files and the inbox directories are
// created when missing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch directories rather than files so replaced files keep being seen.
	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for i, d := range w.inboxes {
		abs, err := filepath.Abs(d)
		if err != nil {
			fw.Close()
			return err
		}
		w.inboxes[i] = filepath.Clean(abs)
		dirs[w.inboxes[i]] = struct{}{}
	}
	for d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			fw.Close()
			return err
		}
		if err := fw.Add(d); err != nil {
			fw.Close()
			return err
		}
	}

	w.watcher = fw
	w.started = true
	w.logger.Debug("watcher starting",
		zap.Int("files", len(w.files)),
		zap.Strings("inboxes", w.inboxes),
		zap.Duration("debounce", w.debounce))

	pending := make(map[string]time.Time)
	for _, p := range w.existingInboxFiles() {
		pending[p] = time.Now()
	}
	go w.run(ctx, fw, pending)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, pending map[string]time.Time) {
	defer close(w.exited)
	defer fw.Close()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		var fire <-chan time.Time
		if next, ok := earliest(pending); ok {
			timer.Reset(max(0, time.Until(next)))
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if key := w.classify(ev); key != "" {
				w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
				pending[key] = time.Now().Add(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-fire:
			now := time.Now()
			for key, due := range pending {
				if due.After(now) {
					continue
				}
				delete(pending, key)
				w.dispatch(key)
			}
		}
	}
}

// classify returns the pending key for ev, or "" when ev is irrelevant.
func (w *Watcher) classify(ev fsnotify.Event) string {
	path := filepath.Clean(ev.Name)
	if _, ok := w.files[path]; ok {
		if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
			return corpusKey
		}
		return ""
	}
	if w.onFile == nil || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return ""
	}
	if !w.inInbox(path) || !matchExtension(path, w.extensions) {
		return ""
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}

func (w *Watcher) dispatch(key string) {
	if key == corpusKey {
		w.logger.Debug("watcher corpus changed (debounced)")
		if w.onChange != nil {
			w.onChange()
		}
		return
	}
	w.logger.Debug("watcher glossary file (debounced)", zap.String("path", key))
	w.onFile(key)
}

func (w *Watcher) inInbox(path string) bool {
	dir := filepath.Dir(path)
	for _, inbox := range w.inboxes {
		if dir == inbox {
			return true
		}
	}
	return false
}

func (w *Watcher) existingInboxFiles() []string {
	if w.onFile == nil {
		return nil
	}
	var paths []string
	for _, inbox := range w.inboxes {
		entries, err := os.ReadDir(inbox)
		if err != nil {
			w.logger.Warn("watcher cannot read inbox", zap.String("path", inbox), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if e.Type().IsRegular() && matchExtension(e.Name(), w.extensions) {
				paths = append(paths, filepath.Join(inbox, e.Name()))
			}
		}
	}
	return paths
}

func earliest(pending map[string]time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for _, due := range pending {
		if !found || due.Before(next) {
			next, found = due, true
		}
	}
	return next, found
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Stop stops the watcher and waits for its goroutine to exit. A callback
// that is running finishes first.
func (w *Watcher) Stop() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
	if started {
		<-w.exited
	}
}

// Wait blocks until the watcher goroutine has exited, e.g. after its context
// was cancelled.
func (w *Watcher) Wait() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.exited
	}
}

// Inboxes returns the absolute inbox directories.
func (w *Watcher) Inboxes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.inboxes...)
}
