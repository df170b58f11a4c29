// Package reaper prunes registered clients whose process has exited without
// unregistering. It wakes at the config store's reaper frequency, so a
// config reload changes the pace without a restart.
package reaper

import (
	"context"
	"sync"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/gamemode/gamemoded/internal/config"
	"github.com/gamemode/gamemoded/internal/engine"
	"github.com/gamemode/gamemoded/internal/log"
)

// ProcessChecker reports whether a pid is still alive.
type ProcessChecker interface {
	Alive(pid int) bool
}

// PSChecker checks pid liveness against the OS process table.
type PSChecker struct{}

// Alive reports whether a process with the given pid exists.
func (PSChecker) Alive(pid int) bool {
	proc, err := ps.FindProcess(pid)
	return err == nil && proc != nil
}

var _ ProcessChecker = PSChecker{}

// Reaper periodically sweeps the engine's client list for dead processes.
type Reaper struct {
	cfg   *config.Store
	eng   *engine.Engine
	check ProcessChecker

	wg       sync.WaitGroup
	cancelFn context.CancelFunc
}

// New creates a Reaper. A nil checker defaults to PSChecker.
func New(cfg *config.Store, eng *engine.Engine, check ProcessChecker) *Reaper {
	if check == nil {
		check = PSChecker{}
	}
	return &Reaper{cfg: cfg, eng: eng, check: check}
}

// Run starts the sweep loop in the background. The loop stops when ctx is
// cancelled or Close is called.
func (r *Reaper) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel

	r.wg.Add(1)
	go r.loop(runCtx)

	log.Info("reaper: started")
}

// Close stops the sweep loop and waits for it to exit.
func (r *Reaper) Close() {
	if r.cancelFn != nil {
		r.cancelFn()
	}
	r.wg.Wait()
	log.Info("reaper: stopped")
}

func (r *Reaper) loop(ctx context.Context) {
	defer r.wg.Done()

	// The interval is re-read every cycle so a reloaded reaper_freq takes
	// effect on the next wakeup.
	timer := time.NewTimer(r.interval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			r.Sweep(ctx)
			timer.Reset(r.interval())
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) interval() time.Duration {
	return time.Duration(r.cfg.ReaperFrequency()) * time.Second
}

// Sweep unregisters every client whose process no longer exists and returns
// how many were reaped.
func (r *Reaper) Sweep(ctx context.Context) int {
	reaped := 0
	for _, c := range r.eng.Clients() {
		if r.check.Alive(c.PID) {
			continue
		}
		if _, ok := r.eng.UnregisterGame(ctx, c.PID); ok {
			log.Infof("reaper: removed dead client pid %d (%s)", c.PID, c.Path)
			reaped++
		}
	}
	return reaped
}
