package main

import (
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"upwork-job-scorer/config"
	"upwork-job-scorer/services"
	"upwork-job-scorer/storage"
	"upwork-job-scorer/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	logger.Info("=== Job Scoring Pipeline starting ===")
	logger.Info("Config: input=%s | output=%s | concurrency=%d | sort=%v",
		cfg.InputCSVPath, cfg.OutputCSVPath, cfg.MaxConcurrency, cfg.SortByScore)

	profile, err := config.LoadScoringProfile(cfg.ScoringProfilePath)
	if err != nil {
		logger.Error("Invalid scoring profile: %v", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("Metrics endpoint listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("Metrics server stopped: %v", err)
			}
		}()
	}

	reader := storage.NewCSVReader(cfg.InputCSVPath, logger)
	rawRecords, err := reader.ReadAll()
	if err != nil {
		logger.Error("Failed to read input CSV: %v", err)
		os.Exit(1)
	}
	if len(rawRecords) == 0 {
		logger.Error("Input file %s contains no records. Exiting.", cfg.InputCSVPath)
		os.Exit(1)
	}
	logger.Info("Read %d raw records from %s", len(rawRecords), cfg.InputCSVPath)

	normalizer := services.NewNormalizer(logger)
	scorer := services.NewScorer(profile, logger)
	pipeline := services.NewPipeline(normalizer, scorer, logger, cfg.MaxConcurrency)

	result := pipeline.Run(rawRecords)
	if len(result.Jobs) == 0 {
		logger.Error("All records were dropped during normalization. Exiting.")
		os.Exit(1)
	}

	if cfg.SortByScore {
		sort.SliceStable(result.Jobs, func(i, j int) bool {
			return result.Jobs[i].GoldenScore > result.Jobs[j].GoldenScore
		})
	}

	csvWriter, err := storage.NewCSVWriter(cfg.OutputCSVPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(result.Jobs); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Scored jobs saved to %s", cfg.OutputCSVPath)
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		defer pgWriter.Close()

		retry := &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		}
		err = retry.Do("postgres write", func() error {
			return pgWriter.Write(result.Jobs)
		})
		if err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Scored jobs stored in PostgreSQL (table: scored_jobs)")
		}
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(result)
	insightSvc.Print(report)

	logger.Info("=== Pipeline complete ===")
}
