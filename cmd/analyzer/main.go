package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/collector"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/config"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/dashboard"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/ingest"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/pipeline"
	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/storage"
)

var version = "dev"

var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "analyzer",
	Short:   "Reddit trend analyzer",
	Long:    "Fetches recent subreddit activity under a strict request budget and turns it into ranked, time-decayed trend signals.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		slog.SetDefault(logger)

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("analyzer", version)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, analyze and store one trend snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		return snapshot(cmd, store)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and refresh snapshots on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		go func() {
			logger.Info("starting dashboard", "port", cfg.Port)
			if err := dashboard.StartServer(store, cfg.Port); err != nil {
				logger.Error("dashboard failed", "err", err)
			}
		}()

		// First snapshot right away so the dashboard has data; failures
		// are logged, the scheduler keeps trying.
		if err := snapshot(cmd, store); err != nil {
			logger.Error("initial snapshot failed", "err", err)
		}

		c := cron.New()
		if _, err := c.AddFunc(cfg.RefreshSchedule, func() {
			if err := snapshot(cmd, store); err != nil {
				logger.Error("scheduled snapshot failed", "err", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", cfg.RefreshSchedule, err)
		}
		c.Start()
		logger.Info("scheduler started", "schedule", cfg.RefreshSchedule)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutdown signal received")
		<-c.Stop().Done()
		return nil
	},
}

func snapshot(cmd *cobra.Command, store *storage.Store) error {
	logger := slog.Default()

	subs, err := loadSubreddits()
	if err != nil {
		return fmt.Errorf("loading subreddit list: %w", err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("no subreddits configured (set SUBREDDITS or %s)", cfg.SubredditsFile)
	}

	client, err := collector.NewCollector(cfg)
	if err != nil {
		return fmt.Errorf("initializing collector: %w", err)
	}
	logger.Info("collector initialized", "mode", cfg.CollectorMode, "subreddits", len(subs))

	p := pipeline.New(cfg, client, store, logger)
	_, err = p.Run(cmd.Context(), subs)
	return err
}

func loadSubreddits() ([]string, error) {
	if len(cfg.Subreddits) > 0 {
		return cfg.Subreddits, nil
	}
	return ingest.LoadSubreddits(cfg.SubredditsFile)
}
