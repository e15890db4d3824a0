// Package main provides a CLI for allocating one counter value, mainly for
// operations and smoke testing against a live database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	appctx "numera/internal/core/context"
	"numera/internal/domain/counters"
	"numera/internal/infrastructure/cache"
	"numera/internal/infrastructure/storage/postgres"
	"numera/internal/infrastructure/storage/postgres/counter_repo"
	"numera/pkg/logger"
)

func main() {
	var (
		code       = flag.String("code", "", "counter code (required)")
		site       = flag.String("site", "", "caller site code")
		dateStr    = flag.String("date", "", "reference date (YYYY-MM-DD, default: legacy epoch)")
		complement = flag.String("comp", "", "complement text")
		user       = flag.String("user", "", "audit user recorded on the value row")
		count      = flag.Int("n", 1, "number of allocations")
	)
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if *code == "" {
		log.Fatal("-code is required")
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	if *user != "" {
		ctx = appctx.WithActor(ctx, &appctx.ActorContext{UserCode: *user, Site: *site})
	}

	cfg := counters.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid counter configuration", "error", err)
	}

	var date time.Time
	if *dateStr != "" {
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			log.Fatalw("invalid -date", "error", err)
		}
	}

	dbURL := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	allocator := counters.NewService(
		cache.NewDefinitionCache(counter_repo.NewDefinitionRepo(txm)),
		counter_repo.NewValueRepo(txm),
		counter_repo.NewSiteRepo(txm),
		cfg,
	)

	for i := 0; i < *count; i++ {
		formatted, err := allocator.Next(ctx, counters.Request{
			CounterCode: *code,
			Site:        *site,
			Date:        date,
			Complement:  *complement,
		})
		if err != nil {
			log.Fatalw("allocation failed", "counter", *code, "error", err)
		}
		fmt.Println(formatted)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
