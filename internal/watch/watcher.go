package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a
// revalidation is requested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes below a set of watched directories.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu        sync.Mutex
	recursive map[string]bool // watched root -> recursive
	ignored   []string
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fsw: fsw, debounce: debounce, recursive: map[string]bool{}}, nil
}

// Add watches path. A file is watched through its directory. A directory
// added with recursive set is watched together with every non-hidden
// subdirectory, including ones created later.
func (w *Watcher) Add(path string, recursive bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve watch path").
			WithContext("path", path).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch path not accessible").
			WithContext("path", path).
			Build()
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
		recursive = false
	}

	w.mu.Lock()
	w.recursive[abs] = w.recursive[abs] || recursive
	w.mu.Unlock()

	if !recursive {
		return w.addDir(abs)
	}
	return w.addTree(abs)
}

// Ignore drops events for path, anything below it, and files next to it
// whose name extends it, such as database journals and temp files.
func (w *Watcher) Ignore(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		w.mu.Lock()
		w.ignored = append(w.ignored, abs)
		w.mu.Unlock()
	}
}

func (w *Watcher) addDir(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", dir).
			Build()
	}
	slog.Debug("Watching directory", logfields.Path(dir))
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (isHidden(d.Name()) || w.isIgnored(p)) {
			return filepath.SkipDir
		}
		return w.addDir(p)
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers a notification to notify after every burst of relevant
// events, until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, notify func(path string)) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(event.Name)
			}
			slog.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			last = event.Name
			timer.Reset(w.debounce)
		case <-timer.C:
			notify(last)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// watchNewDir starts watching a directory created below a recursive root.
func (w *Watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || !w.underRecursiveRoot(path) {
		return
	}
	if err := w.addTree(path); err != nil {
		slog.Warn("Failed to watch new directory", logfields.Path(path), logfields.Error(err))
	}
}

func (w *Watcher) underRecursiveRoot(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for root, rec := range w.recursive {
		if rec && within(root, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) isIgnored(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ig := range w.ignored {
		if within(ig, path) || strings.HasPrefix(path, ig) {
			return true
		}
	}
	return false
}

// relevant filters out attribute changes, editor scratch files, hidden
// paths and ignored directories. Env files are hidden but still count.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if (isHidden(base) && !slices.Contains(config.EnvFiles(), base)) || isScratchFile(base) {
		return false
	}
	return !w.isIgnored(event.Name)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func isScratchFile(name string) bool {
	return strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx") ||
		strings.HasPrefix(name, "#")
}

// within reports whether path is root or below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
