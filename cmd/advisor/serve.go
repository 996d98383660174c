package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wealthsim/advisor/internal/cache"
	"github.com/wealthsim/advisor/internal/config"
	"github.com/wealthsim/advisor/internal/feasibility"
	httpapi "github.com/wealthsim/advisor/internal/interfaces/http"
	"github.com/wealthsim/advisor/internal/metrics"
	"github.com/wealthsim/advisor/internal/planner"
	"github.com/wealthsim/advisor/internal/scheduler"
	"github.com/wealthsim/advisor/internal/simulation"
	"github.com/wealthsim/advisor/internal/store"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the advisor JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}

func runServer(cfg config.Config) error {
	profiles, err := buildProfileStore(cfg)
	if err != nil {
		return err
	}

	engine := feasibility.NewEngine(&cfg.Weights)
	pl := planner.New(engine, cfg.Planner)
	sim := simulation.New(nil)
	registry := metrics.New()
	scoreCache := cache.NewAuto(cfg.Redis.Addr)

	handlers := httpapi.NewHandlers(engine, pl, sim, profiles, scoreCache, registry, cfg.Redis.ScoreTTL, nil)
	server := httpapi.NewServer(cfg.Server, cfg.RateLimit, handlers)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(pl, profiles, cfg.Scheduler.Spec)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if sched != nil {
		sched.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func buildProfileStore(cfg config.Config) (store.ProfileStore, error) {
	if cfg.Postgres.DSN == "" {
		log.Info().Msg("no postgres DSN configured, using in-memory profile store")
		return store.NewMemory(), nil
	}
	return store.NewPostgres(cfg.Postgres.DSN, cfg.Postgres.Timeout)
}
