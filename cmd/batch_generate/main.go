package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizforge/internal/app"
	"quizforge/internal/config"
	"quizforge/internal/logger"
	"quizforge/internal/observability"
	"quizforge/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "batch_generate",
	Short: "Generate a quiz for every text file in a directory",
	Long: `Reads every file matching --input, detects its topic (unless --topic is
given), generates questions and writes one JSON document per file to --out.`,
	SilenceUsage: true,
	RunE:         runBatch,
}

func init() {
	rootCmd.Flags().String("config", "", "Path to a config file (default: search for config.yaml)")
	rootCmd.Flags().String("input", "", "Glob of input text files (default: batch.input_glob)")
	rootCmd.Flags().String("out", "", "Output directory (default: batch.output_dir)")
	rootCmd.Flags().String("topic", "", "Topic for every file; detected per file when empty")
	rootCmd.Flags().Int("total", service.DefaultTotalCount, "Questions per file")
	rootCmd.Flags().Int("mc", 0, "How many of them are multiple choice")
	rootCmd.Flags().Int("concurrency", 0, "Files processed in parallel (default: batch.concurrency)")
	rootCmd.Flags().Bool("summary", false, "Include a summary in every document")
	rootCmd.Flags().Int64("seed", 0, "Base random seed; file i uses seed+i (0 means random)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadConfigFile(cfgPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, cfg.Tracing, cfg.Logger.Env, log)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close()

	opts := service.BatchOptions{
		InputGlob:   stringFlag(cmd, "input", cfg.Batch.InputGlob),
		OutputDir:   stringFlag(cmd, "out", cfg.Batch.OutputDir),
		Concurrency: cfg.Batch.Concurrency,
	}
	opts.Topic, _ = cmd.Flags().GetString("topic")
	opts.TotalCount, _ = cmd.Flags().GetInt("total")
	opts.MCCount, _ = cmd.Flags().GetInt("mc")
	opts.WithSummary, _ = cmd.Flags().GetBool("summary")
	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		opts.Concurrency = n
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		opts.Seed = &seed
	}

	batch := service.NewBatchService(components.Service, afero.NewOsFs(), log)
	report, err := batch.Run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed in %s\n", report.Succeeded, report.Failed, report.Duration.Round(time.Millisecond))
	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.Input, f.Error)
		}
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Files))
	}
	return nil
}

func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
