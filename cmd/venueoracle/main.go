package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/venueoracle/internal/config"
	"github.com/rewired-gh/venueoracle/internal/logger"
	"github.com/rewired-gh/venueoracle/internal/metrics"
	"github.com/rewired-gh/venueoracle/internal/models"
	"github.com/rewired-gh/venueoracle/internal/monitor"
	"github.com/rewired-gh/venueoracle/internal/report"
	"github.com/rewired-gh/venueoracle/internal/source"
	"github.com/rewired-gh/venueoracle/internal/storage"
	"github.com/rewired-gh/venueoracle/internal/synth"
	"github.com/rewired-gh/venueoracle/internal/telegram"
)

var (
	configPath string
	envFile    string
)

func main() {
	root := &cobra.Command{
		Use:           "venueoracle",
		Short:         "Multi-venue benchmark anomaly detection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before configuration")

	root.AddCommand(newDetectCmd(), newRunsCmd(), newDivergenceCmd(), newAMMCmd(), newSwapsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file (if present) and the configuration, then
// initializes logging.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.InitWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if configPath != "" {
		logger.Info("Configuration loaded from %s", configPath)
	}
	return cfg, nil
}

func newDetectCmd() *cobra.Command {
	var (
		input  string
		points int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Aggregate a venue series into benchmarks and run the detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("points") {
				cfg.Synth.Points = points
			}
			if cmd.Flags().Changed("seed") {
				cfg.Synth.Seed = seed
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			return runDetect(cmd.Context(), cfg, input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Read observations from a .json or .csv file instead of the synthetic generator")
	cmd.Flags().IntVar(&points, "points", 0, "Override synth.points")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Override synth.seed")
	return cmd
}

func monitorConfig(cfg *config.Config) monitor.Config {
	return monitor.Config{
		MaxStaleness:            cfg.Monitor.MaxStaleness(),
		ThinLiquidityQuantile:   cfg.Monitor.ThinLiquidityQuantile,
		ThinLiquidityMinHistory: cfg.Monitor.ThinLiquidityMinHistory,
		FlashSpikeThresholdPct:  cfg.Monitor.FlashSpikeThresholdPct,
		HistoryLimit:            cfg.Monitor.HistoryLimit,
	}
}

// loadGroups reads a recorded file as an ordered stream, keeping its row order
// so backwards timestamps reach the monitor, or generates the synthetic series.
func loadGroups(cfg *config.Config, input string, start time.Time) ([]models.ObservationGroup, string, error) {
	if input != "" {
		obs, err := source.LoadFile(input)
		if err != nil {
			return nil, "", err
		}
		return monitor.GroupContiguous(obs), input, nil
	}

	sc := synth.DefaultConfig(start)
	sc.Points = cfg.Synth.Points
	sc.Seed = uint64(cfg.Synth.Seed)
	sc.BasePrice = cfg.Synth.BasePrice
	sc.Step = cfg.Synth.Step
	sc.FlashMultiple = cfg.Synth.FlashMultiple
	return monitor.GroupByTimestamp(synth.Series(sc)), fmt.Sprintf("synth:seed=%d", cfg.Synth.Seed), nil
}

func runDetect(ctx context.Context, cfg *config.Config, input string) error {
	startTime := time.Now()

	reg := metrics.NewRegistry()
	var srv *http.Server
	if cfg.Metrics.Enabled {
		srv = serveMetrics(cfg.Metrics.ListenAddr, reg)
	}

	var store *storage.Storage
	if cfg.Storage.Enabled {
		var err error
		store, err = storage.New(cfg.Storage.MaxRuns, cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()
	}

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		var err error
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	groups, src, err := loadGroups(cfg, input, startTime.UTC().Truncate(time.Second))
	if err != nil {
		return err
	}
	logger.Info("Loaded %d groups from %s", len(groups), src)

	mon := monitor.New(monitorConfig(cfg), reg)
	records := make([]models.BenchmarkRecord, 0, len(groups))
	out := os.Stdout
	fmt.Fprintln(out, report.Header)

	var runErr error
	for rec, err := range mon.Records(func(yield func(models.ObservationGroup) bool) {
		for _, g := range groups {
			if ctx.Err() != nil || !yield(g) {
				return
			}
		}
	}) {
		if err != nil {
			runErr = err
			break
		}
		records = append(records, rec)
		fmt.Fprintln(out, report.RecordLine(rec))
	}
	if err := report.WriteSummary(out, report.Summarize(records)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	run := &models.Run{ID: uuid.NewString(), Source: src, StartedAt: startTime}
	if store != nil {
		stored, err := store.CreateRun(src, startTime)
		if err != nil {
			logger.Error("Failed to create run: %v", err)
		} else if err := store.AddRecords(stored.ID, records); err != nil {
			logger.Error("Failed to store records for run %s: %v", stored.ID, err)
		} else {
			run = stored
			if err := store.RotateRuns(); err != nil {
				logger.Warn("Failed to rotate runs: %v", err)
			}
		}
	}
	run.Records = len(records)
	run.Flagged = report.Summarize(records).Flagged

	if telegramClient != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if runErr != nil {
			if err := telegramClient.SendError(notifyCtx, runErr); err != nil {
				logger.Warn("Failed to send error notification to Telegram: %v", err)
			}
		} else if err := telegramClient.Send(notifyCtx, run, records); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else if run.Flagged > 0 {
			logger.Info("Sent Telegram digest with %d flagged records", run.Flagged)
		}
	}

	logger.Info("Detection run %s completed in %v", run.ID, time.Since(startTime))

	if srv != nil {
		logger.Info("Serving metrics on %s until interrupted", cfg.Metrics.ListenAddr)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down metrics server: %v", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("detection stopped after %d records: %w", len(records), runErr)
	}
	return nil
}

func serveMetrics(addr string, reg *metrics.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	}()
	return srv
}
