// Package watch reports when content files change on disk, so a running walk
// can reload its tree and articles.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals on Changes whenever one of its files is written, created,
// or replaced. Parent directories are watched rather than the files, so
// editors that save by rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	changes  chan struct{}
	stop     chan struct{}
	done     chan struct{}
	log      *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must stay quiet before a change is
// reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New starts watching files. At least one file is required.
func New(files []string, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		fs:       fw,
		files:    make(map[string]bool, len(files)),
		debounce: DefaultDebounce,
		changes:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: adding %s: %w", dir, err)
		}
	}

	go w.loop()
	return w, nil
}

// Changes delivers one value per settled burst of changes. Pending changes
// coalesce; a slow reader sees at most one.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching and closes Changes.
func (w *Watcher) Close() error {
	close(w.stop)
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	timer := time.NewTimer(0)
	<-timer.C // drain initial timer
	defer timer.Stop()

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}
