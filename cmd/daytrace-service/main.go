package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daytrace/daytrace/internal/api"
	"github.com/daytrace/daytrace/internal/clock"
	"github.com/daytrace/daytrace/internal/config"
	"github.com/daytrace/daytrace/internal/dispatch"
	"github.com/daytrace/daytrace/internal/factory"
	"github.com/daytrace/daytrace/internal/health"
	"github.com/daytrace/daytrace/internal/logger"
	"github.com/daytrace/daytrace/internal/stats"
	"github.com/daytrace/daytrace/internal/store"
	"github.com/daytrace/daytrace/internal/telegram"
	"github.com/daytrace/daytrace/internal/tracker"
)

func main() {
	// Optional driver flag override (memory | sqlite | postgres)
	dbDriver := flag.String("db-driver", "", "Override DAYTRACE_DB_DRIVER (memory, sqlite, postgres)")
	flag.Parse()

	log := logger.New("daytrace-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbDriver != "" {
		cfg.DBDriver = *dbDriver
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid db-driver override")
		}
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("timezone", cfg.Timezone).
		Int("http_port", cfg.HTTPPort).
		Bool("bot_enabled", cfg.BotToken != "").
		Msg("Daytrace service starting…")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// -------- Store layer ------------------
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Session store unavailable")
	}

	// -------- Engine -----------------------
	clk := clock.NewWall(cfg.Location())
	agg := stats.New(st)
	engine := tracker.New(st, clk, agg, log)

	// -------- Health monitor ---------------
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second
	storeHC := store.NewStoreHealthChecker(st, log, 0)
	go storeHC.Start(ctx, interval)
	serviceHC := health.NewServiceHealthChecker(log, storeHC)
	go serviceHC.Start(ctx, interval)
	api.BindServiceHealth(serviceHC.IsHealthy)
	api.BindStoreHealth(storeHC.IsHealthy)

	// -------- Update dispatcher ------------
	exec := dispatch.New(dispatch.Config{
		Shards:         cfg.DispatchShards,
		QueueSize:      cfg.DispatchQueueSize,
		EnqueueTimeout: cfg.DispatchEnqueueTimeout,
		ErrorHandler: func(err error) {
			log.Error().Stack().Err(err).Msg("Update handler failed")
		},
	}, log)

	// -------- Telegram poller --------------
	pollCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	pollDone := make(chan struct{})
	if cfg.BotToken != "" {
		tg := telegram.NewClient(cfg.BotToken, "", log)
		bot := telegram.NewBot(tg, engine, cfg.Location(), log)
		poller := telegram.NewPoller(tg, bot, exec, cfg.PollTimeout, log)
		go func() {
			defer close(pollDone)
			if err := poller.Run(pollCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal().Err(err).Msg("Telegram poller failed")
			}
		}()
	} else {
		close(pollDone)
		log.Warn().Msg("DAYTRACE_BOT_TOKEN not set; running HTTP-only")
	}

	// -------- Router & Server --------------
	router := api.NewRouter(api.NewTrackerHandler(engine, agg))
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down…")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	// Stop intake first: no new updates, no new HTTP transitions. Queued
	// updates still drain through the dispatcher before sessions close.
	stopPoller()
	<-pollDone
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	exec.Stop()

	// Open intervals end now; losing them would corrupt tomorrow's report.
	closed, err := engine.ForceCloseAll(ctxShutdown)
	if err != nil {
		log.Error().Stack().Err(err).Int("closed", closed).Msg("Closing open sessions failed; intervals lost")
	} else if closed > 0 {
		log.Info().Int("closed", closed).Msg("Closed open sessions")
	}

	log.Info().Msg("Server exited")
}
