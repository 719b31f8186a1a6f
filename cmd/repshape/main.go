package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/anvgorok/repshape/internal/config"
	"github.com/anvgorok/repshape/internal/logger"
	"github.com/anvgorok/repshape/internal/pipeline"
	"github.com/anvgorok/repshape/internal/report"
	"github.com/anvgorok/repshape/internal/storage"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)
	logger.Debug("Dump directory: %s (tags=%s users=%s posts=%s)",
		cfg.Dump.DataDir, cfg.Dump.TagsFile, cfg.Dump.UsersFile, cfg.Dump.PostsFile)

	// Run the analysis pipeline
	p := pipeline.New(cfg)
	result, answers, err := p.Run(context.Background())
	if err != nil {
		logger.Fatal("Pipeline failed: %v", err)
	}

	// Persist run artifacts when the store is enabled
	if cfg.Storage.Enabled {
		store, err := storage.New(cfg.Storage.DBPath)
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()

		if err := store.SaveFeatures(result.RunID, answers); err != nil {
			logger.Error("Failed to persist answer features: %v", err)
		}
		if err := store.SaveReport(result); err != nil {
			logger.Error("Failed to persist report: %v", err)
		}
		logger.Info("Run %s persisted to %s", result.RunID, cfg.Storage.DBPath)
	}

	// Print the report
	if err := report.WriteShapeCounts(os.Stdout, result); err != nil {
		logger.Fatal("Failed to write shape distribution: %v", err)
	}
	if err := report.Write(os.Stdout, result); err != nil {
		logger.Fatal("Failed to write report: %v", err)
	}
}
