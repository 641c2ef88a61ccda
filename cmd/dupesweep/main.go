package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dupesweep/internal/config"
	"dupesweep/internal/database"
	"dupesweep/internal/exitcodes"
	"dupesweep/internal/logging"
	"dupesweep/internal/metrics"
	"dupesweep/internal/pipeline"
	"dupesweep/internal/report"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	root := flag.String("root", "", "Directory to scan (defaults to current directory)")
	dryRun := flag.Bool("dry-run", false, "Print the deletion plan without deleting anything")
	assumeYes := flag.Bool("yes", false, "Skip the confirmation prompt (answer yes)")
	minSize := flag.Int64("min-size", 0, "Minimum file size in bytes to consider")
	policy := flag.String("policy", "", "Survivor policy: first_seen, lexical_path, oldest_mtime")
	flag.Parse()

	// Load configuration; flags override file values
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to load config: %v\n", err)
			os.Exit(exitcodes.InvalidConfig)
		}
	} else {
		cfg = config.Default()
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *minSize > 0 {
		cfg.MinSizeBytes = *minSize
	}
	if *policy != "" {
		cfg.SurvivorPolicy = *policy
	}

	logger := logging.New(cfg.LogFile)
	logger.Printf("dupesweep starting, root=%s policy=%s", cfg.Root, cfg.SurvivorPolicy)
	if *dryRun {
		logger.Println("DRY RUN MODE: no files will be deleted")
	}

	if _, err := cfg.ResolveRoot(); err != nil {
		logger.Printf("ERROR: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		metrics.StartServer(cfg.PrometheusAddress(), logger)
	}

	var db *database.AuditDB
	if cfg.DatabasePath != "" {
		logger.Printf("opening audit database: %s", cfg.DatabasePath)
		db, err = database.NewAuditDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: failed to close database: %v", err)
			}
		}()
	}

	// Interruption before confirmation abandons a read-only run; during
	// deletion it stops cleanly between files.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	opts := pipeline.Options{
		DryRun:    *dryRun,
		AssumeYes: *assumeYes,
		Reporter:  report.NewConsole(os.Stdout),
		Confirmer: report.NewTerminalConfirmer(os.Stdin, os.Stdout),
	}

	if _, err := pipeline.Run(ctx, cfg, opts, logger, db); err != nil {
		if ctx.Err() != nil {
			logger.Println("run interrupted")
			os.Exit(exitcodes.Success)
		}
		logger.Printf("ERROR: run failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}

	logger.Println("dupesweep finished")
}
