package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sieve.dev/pkg/sieve/internal/adapter"
	"sieve.dev/pkg/sieve/internal/controller"
)

const runLongDescription = `Generate candidate tests for TEST_FILE and keep those that survive the
filtration: Syntax, Execution, Flakiness, CoverageDelta and Duplicate.

By default the unified diff of the improved test file is printed. Use
--output file to rewrite TEST_FILE in place, or json/yaml for the report.`

var (
	runSourceFlag     string
	runStrategiesFlag []string
	runEnsembleFlag   bool
	runDryRunFlag     bool
	runOutputFlag     string
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run TEST_FILE",
		Short: "Improve a test file",
		Long:  runLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, cmd, cfg)
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runSourceFlag, sourceFlagName, "s", "", "source file under test, shown to strategies that use it")
	bindFlagToConfig(cmd.Flags().Lookup(sourceFlagName), sourceFlagName)

	cmd.Flags().StringSliceVar(&runStrategiesFlag, strategyFlagName, viper.GetStringSlice(strategiesKey), "strategies to run (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(strategyFlagName), strategiesKey)

	cmd.Flags().BoolVar(&runEnsembleFlag, ensembleFlagName, viper.GetBool(ensembleEnabledKey), "run every strategy at every temperature; false runs the first strategy once")
	bindFlagToConfig(cmd.Flags().Lookup(ensembleFlagName), ensembleEnabledKey)

	cmd.Flags().BoolVar(&runDryRunFlag, dryRunFlagName, false, "never modify files")
	bindFlagToConfig(cmd.Flags().Lookup(dryRunFlagName), dryRunFlagName)

	cmd.Flags().StringVarP(&runOutputFlag, outputFlagName, "o", viper.GetString(outputFormatKey), "output format: "+formatNames())
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputFormatKey)
}

func formatNames() string {
	names := make([]string, 0, len(adapter.OutputFormats))
	for _, format := range adapter.OutputFormats {
		names = append(names, string(format))
	}

	return strings.Join(names, ", ")
}

// runSession executes one session and writes its report. A partial report
// is still written when the session fails.
func runSession(ctx context.Context, cmd *cobra.Command, cfg runConfig) error {
	ui := newUI(cmd)
	sinks := newSessionSinks(ui, cfg.TelemetryFile)

	aggregator, err := newAggregator(ctx, cfg, sinks)
	if err != nil {
		sinks.Close()
		return err
	}

	if err := ui.Start(ctx, controller.StartInfo{
		TestFile:          cfg.Args.TestFile,
		Strategies:        cfg.Args.Strategies,
		Temperatures:      cfg.Args.Temperatures,
		GenerationWorkers: cfg.Args.GenerationWorkers,
		FiltrationWorkers: cfg.Args.FiltrationWorkers,
	}); err != nil {
		sinks.Close()
		return err
	}

	report, runErr := aggregator.Run(ctx, cfg.Args)

	sinks.Close()
	ui.Close(ctx)

	if report.SessionID == "" {
		return runErr
	}

	if err := ui.DisplayReport(ctx, report, runErr); err != nil {
		slog.Warn("Failed to display report", "error", err)
	}

	if cfg.MetricsFile != "" {
		if err := sinks.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	// An aborted session never rewrites the test file.
	format := cfg.Format
	if runErr != nil && format == adapter.FormatFile {
		format = adapter.FormatDiff
	}

	if err := reportWriter.Write(context.WithoutCancel(ctx), cmd.OutOrStdout(), format, report, cfg.DryRun); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return runErr
}
