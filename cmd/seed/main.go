// Package main provides a CLI tool for seeding counter configuration data.
package main

import (
	"context"
	"fmt"
	"os"

	"numera/internal/domain/counters"
	"numera/internal/infrastructure/storage/postgres"
	"numera/internal/infrastructure/storage/postgres/counter_repo"
	"numera/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	defRepo := counter_repo.NewDefinitionRepo(txm)
	siteRepo := counter_repo.NewSiteRepo(txm)

	for _, site := range demoSites() {
		if err := siteRepo.Save(ctx, site.code, site.name, site.company); err != nil {
			log.Fatalw("failed to seed site", "site", site.code, "error", err)
		}
		log.Infow("seeded site", "site", site.code, "company", site.company)
	}

	for _, def := range demoDefinitions() {
		if err := defRepo.Save(ctx, def); err != nil {
			log.Fatalw("failed to seed counter definition", "counter", def.Code, "error", err)
		}
		log.Infow("seeded counter definition", "counter", def.Code, "segments", len(def.Segments))
	}

	log.Info("seeding completed successfully")
}

type siteSpec struct {
	code    string
	name    string
	company string
}

func demoSites() []siteSpec {
	return []siteSpec{
		{code: "LIS01", name: "Lisbon plant", company: "PT1"},
		{code: "POR01", name: "Porto warehouse", company: "PT1"},
		{code: "MAD01", name: "Madrid office", company: "ES1"},
	}
}

func demoDefinitions() []*counters.Definition {
	return []*counters.Definition{
		{
			// Editor codes: SYNC0001, SYNC0002, ...
			Code:        "SYNC",
			Description: "Editor code",
			ResetPolicy: counters.ResetNone,
			Level:       counters.LevelFolder,
			Kind:        counters.KindAlphanumeric,
			TotalLength: 8,
			Segments: []counters.Segment{
				{Kind: counters.SegConstant, Constant: "SYNC"},
				{Kind: counters.SegSequence, Length: 4},
			},
		},
		{
			// Invoices: FT25LIS_000001 for site LIS on year 25.
			Code:        "SFACT",
			Description: "Sales invoice",
			ResetPolicy: counters.ResetAnnual,
			Level:       counters.LevelSite,
			Kind:        counters.KindAlphanumeric,
			TotalLength: 14,
			PadScope:    true,
			Segments: []counters.Segment{
				{Kind: counters.SegConstant, Constant: "FT"},
				{Kind: counters.SegYear, Length: 2},
				{Kind: counters.SegSite, Length: 4},
				{Kind: counters.SegSequence, Length: 6},
			},
		},
		{
			// Monthly batch numbers scoped by company, with the caller's
			// complement appended verbatim.
			Code:        "LOT",
			Description: "Production batch",
			ResetPolicy: counters.ResetMonthly,
			Level:       counters.LevelCompany,
			Kind:        counters.KindAlphanumeric,
			TotalLength: 13,
			Segments: []counters.Segment{
				{Kind: counters.SegYear, Length: 2},
				{Kind: counters.SegMonth, Length: 2},
				{Kind: counters.SegCompany, Length: 3},
				{Kind: counters.SegSequence, Length: 5},
				{Kind: counters.SegComplement, Length: 0},
			},
		},
	}
}
