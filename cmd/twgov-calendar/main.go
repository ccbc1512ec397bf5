package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/twgov-calendar/internal/config"
	"github.com/username/twgov-calendar/internal/dataset"
	"github.com/username/twgov-calendar/internal/pipeline"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "twgov-calendar",
		Short: "Taiwan government office calendar to iCalendar",
		Long:  "Fetches the data.gov.tw office calendar datasets, removes ordinary rest days and emits one iCalendar file per source year plus a current-year copy",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (empty uses the default search paths)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(sourcesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var outputDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one calendar file per yearly dataset and select the current-year copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}

			client := newClient(cfg)
			ctx := context.Background()

			if dryRun {
				resources, err := client.Resources(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Found %d yearly CSV resources (dry run, nothing written):\n", len(resources))
				for _, r := range resources {
					fmt.Printf("  %s\n    %s\n", r.Name, r.URL)
				}
				return nil
			}

			summary, err := pipeline.NewRunner(cfg, client, logger).Run(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			fmt.Printf("✅ Processed %d/%d resources, %d events written (%d rows skipped)\n",
				summary.Processed, summary.Resources, summary.Events, summary.SkippedRows)
			if summary.SkippedResources > 0 {
				fmt.Printf("⚠️  %d resource(s) skipped, see log for details\n", summary.SkippedResources)
			}
			if summary.LatestPath != "" {
				fmt.Printf("✅ Current-year calendar: %s\n", summary.LatestPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "Override the output directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and list resources without writing files")

	return cmd
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the catalog's yearly CSV resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			resources, err := newClient(cfg).Resources(context.Background())
			if err != nil {
				return err
			}

			for _, r := range resources {
				fmt.Printf("%s\t%s\n", r.Name, r.URL)
			}
			return nil
		},
	}
}

func newClient(cfg *config.Config) *dataset.Client {
	return dataset.NewClient(
		cfg.Dataset.APIURL,
		cfg.Dataset.GetHTTPTimeout(),
		cfg.Dataset.RateLimitQPS,
		logger,
	)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
