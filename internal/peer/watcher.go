package peer

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
)

// Watcher observes the handoff candidate files and fires a callback when
// the peer rewrites one, so a watch-mode sync can react without polling.
type Watcher struct {
	watcher  *fsnotify.Watcher
	names    map[string]struct{} // watched file base names
	onChange func(path string)
	log      *logging.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewWatcher creates a watcher over the given handoff file paths. The
// parent directories are watched (fsnotify only watches directories
// reliably across editors that replace files by rename) and events are
// filtered back down to the candidate file names.
func NewWatcher(paths []string, onChange func(path string), log *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		names:    make(map[string]struct{}, len(paths)),
		onChange: onChange,
		log:      log.WithComponent("watcher"),
		stopCh:   make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, path := range paths {
		w.names[filepath.Base(path)] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		// Missing directories are fine: the strategy creates them on
		// first write, and a restart picks them up.
		if err := fsw.Add(dir); err != nil {
			w.log.Debug("cannot watch handoff directory", "dir", dir, "error", err)
		}
	}

	return w, nil
}

// Start begins watching for handoff file changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopCh:
		return // already stopped
	default:
	}
	close(w.stopCh)
	_ = w.watcher.Close()
}

// watchLoop processes filesystem events. Events are debounced: atomic
// rename writes produce a create+rename burst for a single handoff.
func (w *Watcher) watchLoop() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, watched := w.names[filepath.Base(event.Name)]; !watched {
				continue
			}

			pending[event.Name] = struct{}{}
			debounce.Reset(200 * time.Millisecond)

		case <-debounce.C:
			for path := range pending {
				w.log.Debug("handoff file changed", "path", path)
				if w.onChange != nil {
					w.onChange(path)
				}
			}
			pending = make(map[string]struct{})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}
