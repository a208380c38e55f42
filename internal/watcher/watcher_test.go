package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, dir string) (<-chan string, context.CancelFunc, <-chan error) {
	t.Helper()

	changes := make(chan string, 16)
	w := New(dir, func(_ context.Context, path string) {
		changes <- path
	}, zap.NewNop()).WithDebounce(200 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	// give fsnotify time to register the directory
	time.Sleep(100 * time.Millisecond)
	return changes, cancel, errc
}

func write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestWatcherDebouncesContentFiles(t *testing.T) {
	dir := t.TempDir()
	changes, cancel, errc := startWatcher(t, dir)

	target := filepath.Join(dir, "posts.json")
	write(t, target, `[]`)
	write(t, target, `[{"title": "a"}]`)
	write(t, target, `[{"title": "b"}]`)
	write(t, filepath.Join(dir, "notes.txt"), "ignored")

	select {
	case got := <-changes:
		assert.Equal(t, filepath.Base(target), filepath.Base(got))
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-changes:
		t.Fatalf("unexpected second change: %s", got)
	case <-time.After(600 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-errc)
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) {}, zap.NewNop())
	assert.Error(t, w.Run(context.Background()))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.yaml"), "")
	write(t, filepath.Join(dir, "a.json"), "")
	write(t, filepath.Join(dir, "c.md"), "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.json"), 0o755))

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.yaml")}, files)

	_, err = Files(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
