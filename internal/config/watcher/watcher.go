// Package watcher reports changes to configuration files.
//
// Parent directories are watched rather than the files themselves, so
// editors that save by writing a temp file and renaming it over the
// original are still seen, as are files created after startup.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/clock"
	"github.com/dshills/proofline/internal/debounce"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned by Add after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Operation is the kind of change seen on a file.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is one debounced change to a watched file.
type Event struct {
	Path string
	Op   Operation
}

// Handler receives events. It runs on the watcher's timer goroutine.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last change to a file.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithClock sets the clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches a set of files for changes.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
	handler Handler
	delay   time.Duration
	clock   clock.Clock
	sched   *debounce.Scheduler
	logger  *zap.Logger

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New starts a watcher that calls handler for every debounced change.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		handler: handler,
		delay:   DefaultDebounce,
		clock:   clock.Real(),
		logger:  zap.NewNop(),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.sched = debounce.New(debounce.WithClock(w.clock))

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add watches path. The file need not exist yet, but its directory must.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Files returns the watched file paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Close stops the watcher and drops pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	w.sched.CancelAll()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	watched := w.files[path]
	closed := w.closed
	w.mu.Unlock()
	if !watched || closed {
		return
	}

	out := Event{Path: path, Op: convertOp(ev.Op)}
	w.sched.Schedule(debounce.Channel(path), w.delay, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed || w.handler == nil {
			return
		}
		w.handler(out)
	})
}

func convertOp(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpWrite
	}
}
