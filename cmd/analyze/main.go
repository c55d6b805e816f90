package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jumpermedia/analytics-backend/internal/analysis"
	"github.com/jumpermedia/analytics-backend/internal/config"
	"github.com/jumpermedia/analytics-backend/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	flags      = flag.NewFlagSet("analyze", flag.ExitOnError)
	outputDir  = flags.String("output-dir", "", "chart output directory (overrides JM_ANALYSIS_OUTPUT_DIR)")
	windowDays = flags.Int("window-days", 0, "analysis window in days (overrides JM_ANALYSIS_WINDOW_DAYS)")
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

	outDir := cfg.Analysis.OutputDir
	if *outputDir != "" {
		outDir = *outputDir
	}
	days := cfg.Analysis.WindowDays
	if *windowDays > 0 {
		days = *windowDays
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

	runner := analysis.NewRunner(db, logger, outDir, days)
	if err := runner.Run(context.Background()); err != nil {
		logger.Fatalw("Analysis failed", "error", err)
	}
}
