package reaper

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamemode/gamemoded/internal/config"
	"github.com/gamemode/gamemoded/internal/engine"
	"github.com/gamemode/gamemoded/internal/registry"
)

type fakeChecker struct {
	alive map[int]bool
}

func (f fakeChecker) Alive(pid int) bool { return f.alive[pid] }

type noFS struct{}

func (noFS) Open(string) (io.ReadCloser, error) { return nil, os.ErrNotExist }

type recordRunner struct{ lines []string }

func (r *recordRunner) Run(_ context.Context, line string) error {
	r.lines = append(r.lines, line)
	return nil
}

func TestSweepRemovesDeadClients(t *testing.T) {
	cfg := config.NewWithPaths(noFS{}, "gamemode.ini")
	cfg.Load()
	eng := engine.New(cfg, registry.New(), &recordRunner{})

	_, err := eng.RegisterGame(context.Background(), 100, "/usr/bin/steam")
	require.NoError(t, err)
	_, err = eng.RegisterGame(context.Background(), 200, "/usr/bin/lutris")
	require.NoError(t, err)

	check := fakeChecker{alive: map[int]bool{100: true, 200: false}}
	r := New(cfg, eng, check)

	reaped := r.Sweep(context.Background())
	require.Equal(t, 1, reaped)

	clients := eng.Clients()
	require.Len(t, clients, 1)
	require.Equal(t, 100, clients[0].PID)
}

func TestSweepRunsEndScriptsWhenLastClientDies(t *testing.T) {
	fs := staticFS{"gamemode.ini": "[custom]\nend=echo done\n"}
	cfg := config.NewWithPaths(fs, "gamemode.ini")
	cfg.Load()
	runner := &recordRunner{}
	eng := engine.New(cfg, registry.New(), runner)

	_, err := eng.RegisterGame(context.Background(), 100, "/usr/bin/steam")
	require.NoError(t, err)

	r := New(cfg, eng, fakeChecker{alive: map[int]bool{}})
	require.Equal(t, 1, r.Sweep(context.Background()))
	require.Equal(t, []string{"echo done"}, runner.lines)
}

func TestSweepNothingToDo(t *testing.T) {
	cfg := config.NewWithPaths(noFS{}, "gamemode.ini")
	cfg.Load()
	eng := engine.New(cfg, registry.New(), &recordRunner{})

	r := New(cfg, eng, fakeChecker{alive: map[int]bool{}})
	require.Equal(t, 0, r.Sweep(context.Background()))
}

func TestIntervalTracksConfig(t *testing.T) {
	fs := staticFS{"gamemode.ini": "[general]\nreaper_freq=7\n"}
	cfg := config.NewWithPaths(fs, "gamemode.ini")
	cfg.Load()

	r := New(cfg, engine.New(cfg, registry.New(), &recordRunner{}), fakeChecker{})
	require.Equal(t, int64(7), int64(r.interval().Seconds()))

	fs["gamemode.ini"] = "[general]\nreaper_freq=2\n"
	cfg.Reload()
	require.Equal(t, int64(2), int64(r.interval().Seconds()))
}

type staticFS map[string]string

func (m staticFS) Open(path string) (io.ReadCloser, error) {
	content, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
