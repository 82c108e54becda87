package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	pkgconfig "github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/logging"

	// Register all browser modes via init().
	_ "github.com/tahseenmorshed/FPLStats/internal/pkg/session/all"
)

const serviceName = "fplstats"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type config struct {
	configPath string
	envFiles   []string
	runFor     time.Duration
	start      int
	end        int
	outputDir  string
	mode       string
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scraper failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "fplstats scrapes per-player match statistics from fbref match reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), serviceName, version)
		},
	}
}

func newRunCmd() *cobra.Command {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape every match report of a range of gameweeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig(cmd, cfg)
			if err != nil {
				return err
			}

			_, logCloser, err := logging.SetupLogger(&appConfig.Logging, serviceName)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer logCloser.Close()
			slog.Info("Config loaded successfully", "path", cfg.configPath, "mode", appConfig.Browser.Mode)

			ctx, cancel := createContext(cmd.Context(), cfg.runFor)
			defer cancel()
			setupSignalHandler(ctx, cancel)

			return runScraper(ctx, appConfig, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var). Empty = defaults")
	flags.StringSliceVar(&cfg.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the config")
	flags.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10m). 0 = run until done or SIGINT/SIGTERM")
	flags.IntVar(&cfg.start, "start", 0, "First gameweek (overrides scraper.start_period)")
	flags.IntVar(&cfg.end, "end", 0, "Last gameweek, inclusive (overrides scraper.end_period)")
	flags.StringVar(&cfg.outputDir, "output", "", "Artifact directory (overrides scraper.output_dir)")
	flags.StringVar(&cfg.mode, "mode", "", "Browser mode: chrome or static (overrides browser.mode)")
	return cmd
}

func loadConfig(cmd *cobra.Command, cfg config) (*pkgconfig.Config, error) {
	if err := pkgconfig.LoadDotEnv(cfg.envFiles...); err != nil {
		return nil, err
	}
	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		appConfig.Scraper.StartPeriod = cfg.start
	}
	if flags.Changed("end") {
		appConfig.Scraper.EndPeriod = cfg.end
	}
	if cfg.outputDir != "" {
		appConfig.Scraper.OutputDir = cfg.outputDir
	}
	if cfg.mode != "" {
		appConfig.Browser.Mode = cfg.mode
	}

	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return appConfig, nil
}

func createContext(parent context.Context, runFor time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if runFor > 0 {
		return context.WithTimeout(parent, runFor)
	}
	return context.WithCancel(parent)
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping scraper...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			// Context already cancelled (run finished, timeout or parent cancellation)
		}
		signal.Stop(sigChan)
	}()
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
