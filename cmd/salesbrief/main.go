package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"salesbrief/internal/config"
	"salesbrief/internal/document"
	"salesbrief/internal/gemini"
	"salesbrief/internal/report"
	"salesbrief/internal/runlog"
	"salesbrief/internal/workbook"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	reportDate string
	mode       string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "salesbrief",
	Short: "salesbrief - daily sales activity report generator",
	Long: `salesbrief reads sales-activity rows from a workbook, generates a
narrative section per department via the Gemini API, and assembles the
sections into a single structured HTML report.

One invocation produces one report and one run log. There is no daemon
and no schedule; run it when the day's data is ready.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; a real environment variable wins either way.
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd executes one report generation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the sales activity report for one date",
	Long: `Reads the master and activity tables, generates one narrative section
per department (sequentially or fanned out, per config), synthesizes the
framing sections, and writes the HTML report artifact.

A re-run for the same date supersedes the earlier artifact. The run log
is written even when the run aborts.`,
	RunE: runReport,
}

// versionCmd prints the version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the salesbrief version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("salesbrief %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "salesbrief.yaml", "path to config file")

	runCmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and GEMINI_API_KEY)")
	runCmd.Flags().StringVar(&reportDate, "date", "", "report date as YYYY-MM-DD (default today)")
	runCmd.Flags().StringVar(&mode, "mode", "", "generation mode: sequential or fanout (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if mode != "" {
		cfg.Pipeline.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	date := time.Now()
	if reportDate != "" {
		date, err = time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", reportDate, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rlog := runlog.New()
	// The run log is the one artifact guaranteed to exist afterwards,
	// success or abort.
	defer func() {
		if path, werr := rlog.Write(cfg.Output.LogDir); werr != nil {
			logger.Error("failed to write run log", zap.Error(werr))
		} else if path != "" {
			logger.Info("run log written", zap.String("path", path))
		}
	}()

	err = generate(ctx, cfg, date, rlog)
	if err != nil {
		rlog.Error(err)
		logger.Error("run aborted", zap.Error(err))
	}
	return err
}

func generate(ctx context.Context, cfg *config.Config, date time.Time, rlog *runlog.Log) error {
	rlog.Step("reading workbook %s", cfg.Input.WorkbookPath)
	tables, err := workbook.Read(cfg.Input.WorkbookPath, cfg.Input.MasterSheet, cfg.Input.ActivitySheet)
	if err != nil {
		return err
	}
	rlog.Step("read %d master records, %d activity rows", len(tables.Master), len(tables.Activity))

	prompts, err := report.LoadPrompts(cfg.Input.TemplatePath)
	if err != nil {
		return err
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		Timeout:        cfg.GetTimeout(),
		MaxPromptBytes: cfg.Gemini.MaxPromptBytes,
		MaxRetries:     cfg.Gemini.MaxRetries,
		MaxConcurrent:  cfg.Gemini.MaxConcurrent,
	}, logger)

	pipeline := report.NewPipeline(cfg, client, prompts, logger, rlog)
	doc, err := pipeline.Run(ctx, tables, date)
	if err != nil {
		return err
	}

	path, err := document.WriteHTML(doc, cfg.Output.Dir, cfg.Output.Prefix, date)
	if err != nil {
		return err
	}
	rlog.Step("report written to %s", path)
	logger.Info("report written", zap.String("path", path))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
