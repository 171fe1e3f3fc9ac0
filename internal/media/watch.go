package media

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached assets when files under the media root are
// written, replaced or removed, so edited clips are re-probed on the next
// Load or ChangeClip.
type Watcher struct {
	lib      *Library
	fsw      *fsnotify.Watcher
	changed  chan string
	onChange func(path string)
}

// NewWatcher watches the library root and every directory below it.
func NewWatcher(lib *Library) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{lib: lib, fsw: fsw, changed: make(chan string, 16)}
	if err := w.addTree(lib.Root()); err != nil {
		fsw.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return w, nil
}

// OnChange registers a callback run on the watcher goroutine after each
// invalidation. Set it before Run.
func (w *Watcher) OnChange(fn func(path string)) {
	w.onChange = fn
}

// Changed delivers invalidated paths. Sends are dropped when nobody reads.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close() //nolint:errcheck // shutting down

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.lib.logger.Warn("media watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		// Watch new directories. A file walks to nothing.
		_ = w.addTree(ev.Name) //nolint:errcheck // may already be gone
	}
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	if !w.lib.Supported(ev.Name) {
		return
	}
	rel, err := filepath.Rel(w.lib.Root(), ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	w.lib.Invalidate(rel)
	w.lib.logger.Info("media changed", "path", rel, "op", ev.Op.String())

	if w.onChange != nil {
		w.onChange(rel)
	}
	select {
	case w.changed <- rel:
	default:
	}
}
