// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/xg2g/internal/config"
	"github.com/ManuGH/xg2g/internal/engine"
	tlelog "github.com/ManuGH/xg2g/internal/log"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tlengine %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	engine.Version = version

	tlelog.Configure(tlelog.Config{
		Level:   "info",
		Service: "tlengine",
		Version: version,
	})
	logger := tlelog.WithComponent("tlengine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.load_failed").Msg("failed to load configuration")
	}

	tlelog.Configure(tlelog.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: version,
	})

	deps, err := engine.Build(ctx, cfg, *tlelog.L(), promhttp.Handler())
	if err != nil {
		logger.Fatal().Err(err).Str("event", "engine.build_failed").Msg("failed to build engine dependencies")
	}

	mgr, err := engine.NewManager(deps)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "engine.manager_failed").Msg("failed to construct manager")
	}

	app := engine.NewApp(logger, mgr)

	logger.Info().Str("event", "engine.starting").Str("health_addr", cfg.HealthAddr).Msg("starting timeline engine")
	if err := app.Run(ctx); err != nil {
		logger.Fatal().Err(err).Str("event", "engine.exited").Msg("timeline engine exited with error")
	}
}
