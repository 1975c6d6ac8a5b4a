package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"peer-lending-ledger/internal/config"
	"peer-lending-ledger/internal/infrastructure/cache"
	"peer-lending-ledger/internal/infrastructure/db"
	"peer-lending-ledger/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/redis/go-redis/v9"
)

func main() { os.Exit(realMain(os.Args[1:])) }

func realMain(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.LogLevel(cfg.LogLevel), log)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		return 1
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			// commands stay correct without redis, only slower
			log.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "err", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	reg := prometheus.NewRegistry()
	a := newApp(gdb, rdb, cfg, log, observability.NewMetrics(reg))
	runErr := a.run(ctx, args, os.Stdout)

	if cfg.PushgatewayURL != "" {
		if err := push.New(cfg.PushgatewayURL, "ledger").Gatherer(reg).PushContext(ctx); err != nil {
			log.Warn("metrics push failed", "err", err)
		}
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		if isUsage(runErr) {
			usage()
			return 2
		}
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ledger <command> [arguments]")
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", c.name, c.args)
	}
}
