package layout

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single file. It watches the file's directory so editors that replace the
// file on save are still seen. Changes are coalesced: at most one notification is pending at a time.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	path     string
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	isClosed bool
}

// Watch starts watching path for writes and re-creations.
//
// Parameters:
//   - path: the file to watch
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if the directory cannot be watched
func Watch(path string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		path:     abs,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Changes delivers the watched path each time it is written or re-created.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			select {
			case w.changes <- w.path:
			default:
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.Warn("file watcher error", "path", w.path, "err", err)
			}
		case <-w.done:
			return
		}
	}
}
