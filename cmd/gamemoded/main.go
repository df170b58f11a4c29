// Command gamemoded is the GameMode daemon. It loads gamemode.ini into a
// shared configuration store, serves a JSON API over a Unix socket for game
// clients to register and unregister, reloads the configuration when the
// file changes on disk or on SIGHUP, and reaps clients whose process died.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gamemode/gamemoded/internal/config"
	"github.com/gamemode/gamemoded/internal/daemoncfg"
	"github.com/gamemode/gamemoded/internal/engine"
	"github.com/gamemode/gamemoded/internal/log"
	"github.com/gamemode/gamemoded/internal/reaper"
	"github.com/gamemode/gamemoded/internal/registry"
	"github.com/gamemode/gamemoded/internal/watch"
	"github.com/gamemode/gamemoded/pkg/api"
)

func main() {
	settings, err := daemoncfg.New().Load()
	if err != nil {
		log.Fatalf("daemon settings: %v", err)
	}

	store := config.New()
	store.Load()

	eng := engine.New(store, registry.New(), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reap := reaper.New(store, eng, nil)
	reap.Run(ctx)
	defer reap.Close()

	// File watch is best-effort: when neither candidate directory exists
	// the daemon still runs, reloadable via SIGHUP or the API.
	if w, err := watch.New(store, store.Paths(), watch.WithDebounce(settings.Watch.Debounce)); err != nil {
		log.Warnf("config watch disabled: %v", err)
	} else {
		w.Start()
		defer w.Stop()
	}

	apiSrv := api.New(eng)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("listening on %s", settings.Socket.Path)
		return apiSrv.ListenAndServe(settings.Socket.Path)
	})

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Info("SIGHUP received, reloading config")
				store.Reload()
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("gamemoded: %v", err)
	}
	log.Info("gamemoded stopped")
}
