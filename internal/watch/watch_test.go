package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type countingReloader struct {
	count atomic.Int64
}

func (c *countingReloader) Reload() { c.count.Inc() }

func TestWatcherTriggersReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamemode.ini")
	require.NoError(t, os.WriteFile(path, []byte("[general]\nreaper_freq=5\n"), 0o644))

	r := &countingReloader{}
	w, err := New(r, []string{path}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("[general]\nreaper_freq=9\n"), 0o644))

	require.Eventually(t, func() bool {
		return r.count.Load() >= 1
	}, 5*time.Second, 25*time.Millisecond)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamemode.ini")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o644))

	r := &countingReloader{}
	w, err := New(r, []string{path}, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a=2\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return r.count.Load() >= 1
	}, 5*time.Second, 25*time.Millisecond)
	// The burst collapses into far fewer reloads than writes.
	require.LessOrEqual(t, r.count.Load(), int64(2))
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamemode.ini")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o644))

	r := &countingReloader{}
	w, err := New(r, []string{path}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.EqualValues(t, 0, r.count.Load())
}

func TestWatcherNoWatchableDirectories(t *testing.T) {
	_, err := New(&countingReloader{}, []string{"/nonexistent-dir-for-test/gamemode.ini"})
	require.Error(t, err)
}
