// Package engine orchestrates the gamemoded core: it gates client
// registration on the config store's filter lists, tracks registered games,
// and runs the configured start/end scripts on the first-in/last-out
// transitions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/gamemode/gamemoded/internal/config"
	"github.com/gamemode/gamemoded/internal/log"
	"github.com/gamemode/gamemoded/internal/registry"
)

var (
	// ErrNotWhitelisted is returned when a client does not pass the whitelist.
	ErrNotWhitelisted = errors.New("client is not whitelisted")
	// ErrBlacklisted is returned when a client matches the blacklist.
	ErrBlacklisted = errors.New("client is blacklisted")
	// ErrAlreadyRegistered is returned when the pid is already registered.
	ErrAlreadyRegistered = errors.New("client already registered")
)

const _scriptTimeout = 10 * time.Second

// ScriptRunner executes one configured script line.
type ScriptRunner interface {
	Run(ctx context.Context, line string) error
}

// ShellRunner runs script lines through /bin/sh -c.
type ShellRunner struct{}

// Run executes line with the shell, bounded by ctx.
func (ShellRunner) Run(ctx context.Context, line string) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %q: %w (output: %s)", line, err, out)
	}
	return nil
}

var _ ScriptRunner = ShellRunner{}

// Engine coordinates the config store, the client registry and script
// execution. Registration transitions are serialized so the start scripts
// run exactly once when the first client arrives and the end scripts exactly
// once when the last one leaves.
type Engine struct {
	cfg    *config.Store
	reg    *registry.Registry
	runner ScriptRunner

	// guards the idle<->active transition around register/unregister
	transition sync.Mutex
}

// New creates an Engine. A nil runner defaults to ShellRunner.
func New(cfg *config.Store, reg *registry.Registry, runner ScriptRunner) *Engine {
	if runner == nil {
		runner = ShellRunner{}
	}
	return &Engine{cfg: cfg, reg: reg, runner: runner}
}

// RegisterGame admits a client identified by pid and executable path. The
// path must pass the whitelist and miss the blacklist; refused clients are
// not registered. Registering the first client runs the start scripts.
func (e *Engine) RegisterGame(ctx context.Context, pid int, path string) (registry.Client, error) {
	if !e.cfg.IsWhitelisted(path) {
		return registry.Client{}, fmt.Errorf("%w: %s", ErrNotWhitelisted, path)
	}
	if e.cfg.IsBlacklisted(path) {
		return registry.Client{}, fmt.Errorf("%w: %s", ErrBlacklisted, path)
	}

	e.transition.Lock()
	defer e.transition.Unlock()

	wasIdle := e.reg.Count() == 0
	client, ok := e.reg.Register(pid, path)
	if !ok {
		return client, fmt.Errorf("%w: pid %d", ErrAlreadyRegistered, pid)
	}

	log.Infof("engine: registered game pid %d (%s)", pid, path)

	if wasIdle {
		if err := e.runScripts(ctx, e.cfg.StartScripts()); err != nil {
			log.Errorf("engine: start scripts: %v", err)
		}
	}
	return client, nil
}

// UnregisterGame removes the client for pid. Removing the last client runs
// the end scripts. Unknown pids are ignored.
func (e *Engine) UnregisterGame(ctx context.Context, pid int) (registry.Client, bool) {
	e.transition.Lock()
	defer e.transition.Unlock()

	client, ok := e.reg.Remove(pid)
	if !ok {
		log.Debugf("engine: unregister for unknown pid %d ignored", pid)
		return registry.Client{}, false
	}

	log.Infof("engine: unregistered game pid %d (%s)", pid, client.Path)

	if e.reg.Count() == 0 {
		if err := e.runScripts(ctx, e.cfg.EndScripts()); err != nil {
			log.Errorf("engine: end scripts: %v", err)
		}
	}
	return client, true
}

// Clients returns a copy of the currently registered clients.
func (e *Engine) Clients() []registry.Client {
	return e.reg.Snapshot()
}

// ActiveCount returns the number of registered clients.
func (e *Engine) ActiveCount() int64 {
	return e.reg.Count()
}

// Config exposes the underlying store for status and reload surfaces.
func (e *Engine) Config() *config.Store {
	return e.cfg
}

// runScripts executes each line in order, collecting failures instead of
// stopping at the first one. Script failures never refuse a client.
func (e *Engine) runScripts(ctx context.Context, lines []string) error {
	var errs error
	for _, line := range lines {
		scriptCtx, cancel := context.WithTimeout(ctx, _scriptTimeout)
		err := e.runner.Run(scriptCtx, line)
		cancel()
		errs = multierr.Append(errs, err)
	}
	return errs
}
