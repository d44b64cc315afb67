package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpgo/asset-projector/internal/cache"
	"github.com/rpgo/asset-projector/internal/config"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/rpgo/asset-projector/internal/scenario"
	"github.com/rpgo/asset-projector/internal/scheduler"
	"github.com/rpgo/asset-projector/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP projection service",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)

			cfg, err := config.LoadServiceConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("service config validation: %w", err)
			}

			var rec recorder.Recorder
			if cfg.Database.SQLitePath != "" {
				sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
				if err != nil {
					log.Warnf("init sqlite recorder failed, using noop: %v", err)
					rec = recorder.NewNoopRecorder()
				} else {
					log.Infof("sqlite recorder opened: %s", cfg.Database.SQLitePath)
					rec = sr
					defer sr.Close()
				}
			} else {
				rec = recorder.NewNoopRecorder()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var c cache.Cache
			if cfg.Cache.RedisAddr != "" {
				rc := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
				if err := rc.Ping(ctx); err != nil {
					log.Warnf("redis unavailable, using in-memory cache: %v", err)
					rc.Close()
					c = cache.NewMemoryCache()
				} else {
					defer rc.Close()
					c = rc
				}
			} else {
				c = cache.NewMemoryCache()
			}

			runner := scenario.NewRunner(rec, log)

			if cfg.Schedule.DeckPath != "" {
				deckPath := cfg.Schedule.DeckPath
				sched := scheduler.NewScheduler(ctx, func() (*domain.Configuration, error) {
					return loadDeck(deckPath)
				}, runner, log)
				if err := sched.Register(cfg.Schedule.Cron); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			limiter := server.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
			defer limiter.Stop()

			srv := server.New(runner, c, rec, limiter, log)
			srv.CachePrefix = cfg.Cache.Prefix
			srv.Timeout = cfg.Server.ReadTimeout
			srv.SetReadTimeout(cfg.Server.ReadTimeout)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(cfg.Server.Addr) }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-sigCh:
				log.Infof("shutdown signal received, stopping...")
			}
			if err := srv.Shutdown(); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			log.Infof("projection service stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "projector.yaml", "service settings (YAML, optional)")
	return cmd
}
