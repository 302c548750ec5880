// Package cmd provides the root command and CLI setup for sieve.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sieve.dev/pkg/sieve/internal/adapter"
	"sieve.dev/pkg/sieve/internal/controller"
	"sieve.dev/pkg/sieve/internal/domain"
	"sieve.dev/pkg/sieve/internal/telemetry"
)

var fsAdapter adapter.SourceFSAdapter
var testAdapter adapter.TestRunnerAdapter
var reportWriter adapter.ReportWriter

// newAggregator builds the session aggregator of a run. Tests replace it.
var newAggregator = buildAggregator

// newUI picks the progress display of a run. Tests replace it.
var newUI = func(cmd *cobra.Command) controller.UI {
	return controller.NewUI(cmd, controller.IsTTY(cmd.ErrOrStderr()))
}

var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	fsAdapter = adapter.NewLocalSourceFSAdapter()
	testAdapter = adapter.NewLocalTestRunnerAdapter()
	reportWriter = adapter.NewLocalReportWriter(fsAdapter)
}

const rootLongDescription = `Sieve improves an existing test file with generated tests.

Candidate tests are produced by an ensemble of prompting strategies and
temperatures, then kept only if they parse, pass, pass reliably, cover new
lines and are not duplicates of another survivor.

Go (*_test.go) and Python (pytest) test files are supported.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "sieve",
		Short:         "Ensemble test improver with strict filtration",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildAggregator wires the generation client, strategies and engines.
func buildAggregator(ctx context.Context, cfg runConfig, sink telemetry.Sink) (domain.Aggregator, error) {
	client, err := adapter.NewGenerationClient(ctx, cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}

	strategies, err := loadStrategySet(cfg.StrategiesFile)
	if err != nil {
		return nil, err
	}

	factory := domain.NewEngineFactory(fsAdapter, testAdapter, client, strategies, sink, cfg.Engine)

	return domain.NewAggregator(fsAdapter, factory, strategies, sink, cfg.SpillDir), nil
}

// loadStrategySet returns the built-in strategies extended (or overridden by
// name) with the ones in path.
func loadStrategySet(path string) (*domain.StrategySet, error) {
	strategies := domain.DefaultStrategies()

	if path == "" {
		return domain.NewStrategySet(strategies...), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strategies file: %w", err)
	}
	defer file.Close()

	custom, err := domain.LoadStrategies(file)
	if err != nil {
		return nil, fmt.Errorf("load strategies from %s: %w", path, err)
	}

	return domain.NewStrategySet(append(strategies, custom...)...), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
