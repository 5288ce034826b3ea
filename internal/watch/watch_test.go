package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

func TestQueueCoalescesRequests(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 4)
	var runs atomic.Int32

	q := NewQueue(func(_ context.Context, reason string) {
		runs.Add(1)
		started <- reason
		<-release
	})
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go q.Run(ctx)

	require.True(t, q.Request("first"))
	assert.Equal(t, "first", <-started)

	// One run active: the next request is pending, the rest are dropped.
	assert.True(t, q.Request("second"))
	assert.False(t, q.Request("third"))
	assert.False(t, q.Request("fourth"))

	release <- struct{}{}
	assert.Equal(t, "second", <-started)
	release <- struct{}{}

	assert.Never(t, func() bool { return runs.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
}

type notifications struct {
	mu    sync.Mutex
	paths []string
}

func (n *notifications) add(p string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, p)
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.paths)
}

func startWatcher(t *testing.T, setup func(w *Watcher)) *notifications {
	t.Helper()
	w, err := NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	setup(w)
	t.Cleanup(func() { _ = w.Close() })

	n := &notifications{}
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	go w.Run(ctx, n.add)
	return n
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	n := startWatcher(t, func(w *Watcher) {
		require.NoError(t, w.Add(dir, true))
	})

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte{byte('a' + i)}, 0o600))
	}

	require.Eventually(t, func() bool { return n.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, n.count())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	n := startWatcher(t, func(w *Watcher) {
		require.NoError(t, w.Add(dir, true))
	})

	sub := filepath.Join(dir, "api")
	require.NoError(t, os.Mkdir(sub, 0o750))
	require.Eventually(t, func() bool { return n.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := n.count()
	require.NoError(t, os.WriteFile(filepath.Join(sub, "models.md"), []byte("# Models\n"), 0o600))
	require.Eventually(t, func() bool { return n.count() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "build")
	require.NoError(t, os.Mkdir(out, 0o750))
	n := startWatcher(t, func(w *Watcher) {
		w.Ignore(out)
		require.NoError(t, w.Add(dir, true))
	})

	require.NoError(t, os.WriteFile(filepath.Join(out, "navigation.json"), []byte("[]"), 0o600))
	assert.Never(t, func() bool { return n.count() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcherAddFileWatchesDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("title: x\n"), 0o600))
	n := startWatcher(t, func(w *Watcher) {
		require.NoError(t, w.Add(cfg, true))
	})

	require.NoError(t, os.WriteFile(cfg, []byte("title: y\n"), 0o600))
	require.Eventually(t, func() bool { return n.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherAddMissingPath(t *testing.T) {
	w, err := NewWatcher(0)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)

	err = w.Add(filepath.Join(t.TempDir(), "missing"), true)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestRelevant(t *testing.T) {
	w := &Watcher{recursive: map[string]bool{}}
	w.ignored = []string{"/site/build"}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: "/site/docs/intro.md", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "/site/docs/api", Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: "/site/docs/intro.md", Op: fsnotify.Chmod}, false},
		{"swap file", fsnotify.Event{Name: "/site/docs/.intro.md.swp", Op: fsnotify.Write}, false},
		{"backup file", fsnotify.Event{Name: "/site/docs/intro.md~", Op: fsnotify.Write}, false},
		{"emacs lock", fsnotify.Event{Name: "/site/docs/#intro.md#", Op: fsnotify.Write}, false},
		{"ignored dir", fsnotify.Event{Name: "/site/build/manifest.json", Op: fsnotify.Write}, false},
		{"journal of ignored", fsnotify.Event{Name: "/site/build-journal", Op: fsnotify.Write}, false},
		{"unrelated sibling", fsnotify.Event{Name: "/site/guide.md", Op: fsnotify.Write}, true},
		{"env file", fsnotify.Event{Name: "/site/.env", Op: fsnotify.Write}, true},
		{"local env file", fsnotify.Event{Name: "/site/.env.local", Op: fsnotify.Create}, true},
		{"other dotfile", fsnotify.Event{Name: "/site/.envrc", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestSchedulerFiresPeriodically(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)

	var ticks atomic.Int32
	id, err := s.Every(20*time.Millisecond, "revalidate", func() { ticks.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	_, err = s.Every(0, "revalidate", func() {})
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
