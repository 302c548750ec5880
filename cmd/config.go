package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"sieve.dev/pkg/sieve/internal/adapter"
	"sieve.dev/pkg/sieve/internal/domain"
	m "sieve.dev/pkg/sieve/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "sieve"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName   = "output"
	sourceFlagName   = "source"
	strategyFlagName = "strategy"
	ensembleFlagName = "ensemble"
	dryRunFlagName   = "dry-run"
	verboseFlagName  = "verbose"

	generationWorkersKey = "generation.workers"
	generationTimeoutKey = "generation.timeout"
	generationRateKey    = "generation.rate"
	filtrationWorkersKey = "filtration.workers"
	flakyRunsKey         = "filtration.flaky_runs"
	coverageSamplesKey   = "filtration.coverage_samples"
	execTimeoutKey       = "execution.timeout"
	coverageTimeoutKey   = "execution.coverage_timeout"
	goBinaryKey          = "execution.go_binary"
	pythonBinaryKey      = "execution.python_binary"
	ensembleEnabledKey   = "ensemble.enabled"
	strategiesKey        = "ensemble.strategies"
	temperaturesKey      = "ensemble.temperatures"
	strategiesFileKey    = "ensemble.strategies_file"
	llmProviderKey       = "llm.provider"
	llmModelKey          = "llm.model"
	llmBaseURLKey        = "llm.base_url"
	llmAPIKeyEnvKey      = "llm.api_key_env"
	outputFormatKey      = "output.format"
	telemetryFileKey     = "telemetry.file"
	metricsFileKey       = "telemetry.metrics_file"
	spillDirKey          = "telemetry.spill_dir"

	defaultGenerationWorkers = 4
	defaultGenerationTimeout = time.Minute * 2
	defaultFiltrationWorkers = 4
	defaultFlakyRuns         = 5
	defaultCoverageSamples   = 2
	defaultExecTimeout       = time.Minute
	defaultLLMProvider       = adapter.ProviderOpenAI
	defaultLLMAPIKeyEnv      = "OPENAI_API_KEY"
	defaultOutputFormat      = string(adapter.FormatDiff)

	envPrefix = "SIEVE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".sieve.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var defaultTemperatures = []float64{0.0, 0.4, 0.8}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(generationWorkersKey, defaultGenerationWorkers)
	viper.SetDefault(generationTimeoutKey, int64(defaultGenerationTimeout.Seconds()))
	viper.SetDefault(generationRateKey, 0.0)
	viper.SetDefault(filtrationWorkersKey, defaultFiltrationWorkers)
	viper.SetDefault(flakyRunsKey, defaultFlakyRuns)
	viper.SetDefault(coverageSamplesKey, defaultCoverageSamples)
	viper.SetDefault(execTimeoutKey, int64(defaultExecTimeout.Seconds()))
	viper.SetDefault(coverageTimeoutKey, 0)
	viper.SetDefault(goBinaryKey, "")
	viper.SetDefault(pythonBinaryKey, "")
	viper.SetDefault(ensembleEnabledKey, true)
	viper.SetDefault(strategiesKey, domain.NewStrategySet(domain.DefaultStrategies()...).Names())
	viper.SetDefault(temperaturesKey, defaultTemperatures)
	viper.SetDefault(strategiesFileKey, "")
	viper.SetDefault(llmProviderKey, defaultLLMProvider)
	viper.SetDefault(llmModelKey, "")
	viper.SetDefault(llmBaseURLKey, "")
	viper.SetDefault(llmAPIKeyEnvKey, defaultLLMAPIKeyEnv)
	viper.SetDefault(outputFormatKey, defaultOutputFormat)
	viper.SetDefault(telemetryFileKey, "")
	viper.SetDefault(metricsFileKey, "")
	viper.SetDefault(spillDirKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// runConfig is the resolved configuration of one `sieve run`.
type runConfig struct {
	Args           domain.RunArgs
	Format         adapter.OutputFormat
	DryRun         bool
	Generation     adapter.GenerationConfig
	Engine         domain.EngineOptions
	StrategiesFile string
	TelemetryFile  string
	MetricsFile    string
	SpillDir       string
}

// loadRunConfig merges flags, environment and config file for testFile.
func loadRunConfig(testFile string) (runConfig, error) {
	format, err := adapter.ParseOutputFormat(viper.GetString(outputFormatKey))
	if err != nil {
		return runConfig{}, err
	}

	temperatures, err := parseTemperatures(viper.Get(temperaturesKey))
	if err != nil {
		return runConfig{}, err
	}

	execTimeout := seconds(viper.GetInt64(execTimeoutKey))

	return runConfig{
		Args: domain.RunArgs{
			TestFile:          m.Path(testFile),
			SourceFile:        m.Path(viper.GetString(sourceFlagName)),
			Strategies:        viper.GetStringSlice(strategiesKey),
			Temperatures:      temperatures,
			GenerationWorkers: viper.GetInt(generationWorkersKey),
			FiltrationWorkers: viper.GetInt(filtrationWorkersKey),
			FlakyRuns:         viper.GetInt(flakyRunsKey),
			Ensemble:          viper.GetBool(ensembleEnabledKey),
		},
		Format: format,
		DryRun: viper.GetBool(dryRunFlagName),
		Generation: adapter.GenerationConfig{
			Provider:  viper.GetString(llmProviderKey),
			Model:     viper.GetString(llmModelKey),
			BaseURL:   viper.GetString(llmBaseURLKey),
			APIKeyEnv: viper.GetString(llmAPIKeyEnvKey),
		},
		Engine: domain.EngineOptions{
			GenerationTimeout: seconds(viper.GetInt64(generationTimeoutKey)),
			GenerationRate:    viper.GetFloat64(generationRateKey),
			ExecTimeout:       execTimeout,
			CoverageTimeout:   seconds(viper.GetInt64(coverageTimeoutKey)),
			CoverageSamples:   viper.GetInt(coverageSamplesKey),
			Binaries: map[m.Language]string{
				m.LanguageGo:     viper.GetString(goBinaryKey),
				m.LanguagePython: viper.GetString(pythonBinaryKey),
			},
		},
		StrategiesFile: viper.GetString(strategiesFileKey),
		TelemetryFile:  viper.GetString(telemetryFileKey),
		MetricsFile:    viper.GetString(metricsFileKey),
		SpillDir:       viper.GetString(spillDirKey),
	}, nil
}

// parseTemperatures accepts a YAML list or a comma separated string from the
// environment.
func parseTemperatures(raw any) ([]float64, error) {
	var values []string

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), v...), nil
	case []any:
		for _, item := range v {
			values = append(values, fmt.Sprint(item))
		}
	case []string:
		values = v
	case string:
		values = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	default:
		return nil, fmt.Errorf("%w: unsupported temperature list %v", domain.ErrInvalidArgs, raw)
	}

	temperatures := make([]float64, 0, len(values))

	for _, value := range values {
		temperature, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: temperature %q is not a number", domain.ErrInvalidArgs, value)
		}

		temperatures = append(temperatures, temperature)
	}

	return temperatures, nil
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
