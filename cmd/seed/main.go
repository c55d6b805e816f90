package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jumpermedia/analytics-backend/internal/config"
	"github.com/jumpermedia/analytics-backend/internal/generator"
	"github.com/jumpermedia/analytics-backend/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	flags       = flag.NewFlagSet("seed", flag.ExitOnError)
	authors     = flags.Int("authors", 0, "number of authors (overrides JM_SEED_AUTHORS)")
	users       = flags.Int("users", 0, "number of users (overrides JM_SEED_USERS)")
	posts       = flags.Int("posts", 0, "number of posts (overrides JM_SEED_POSTS)")
	engagements = flags.Int("engagements", 0, "number of engagements (overrides JM_SEED_ENGAGEMENTS)")
	batchSize   = flags.Int("batch-size", 0, "engagement insert batch size (overrides JM_SEED_BATCH_SIZE)")
	randSeed    = flags.Int64("seed", 0, "random seed, 0 means time-based (overrides JM_SEED_RAND_SEED)")
)

func main() {
	flags.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	genCfg := generator.Config{
		Authors:     cfg.Seed.Authors,
		Users:       cfg.Seed.Users,
		Posts:       cfg.Seed.Posts,
		Engagements: cfg.Seed.Engagements,
		BatchSize:   cfg.Seed.BatchSize,
		RandSeed:    cfg.Seed.RandSeed,
	}
	if *authors > 0 {
		genCfg.Authors = *authors
	}
	if *users > 0 {
		genCfg.Users = *users
	}
	if *posts > 0 {
		genCfg.Posts = *posts
	}
	if *engagements > 0 {
		genCfg.Engagements = *engagements
	}
	if *batchSize > 0 {
		genCfg.BatchSize = *batchSize
	}
	if *randSeed != 0 {
		genCfg.RandSeed = *randSeed
	}

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		logger.Fatalw("Failed to open database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.Fatalw("Database ping failed", "error", err)
	}
	cancel()

	start := time.Now()
	if err := generator.New(db, logger, genCfg).Run(context.Background()); err != nil {
		logger.Fatalw("Dataset generation failed", "error", err)
	}

	logger.Infow("Seed complete", "elapsed", time.Since(start).Round(time.Second).String())
}
