package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/config"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/internal/report"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/iwvelando/rentcheck/pkg/output"
	"github.com/iwvelando/rentcheck/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configLocation   = flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag = flag.String("output-format", "", "type of output override: pretty, csv, json, markdown")
	logLevel         = flag.String("log-level", "", "log level override (debug, info, warn, error)")
	todayFlag        = flag.String("today", "", "reference date override (YYYY-MM-DD)")
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	// Reports go to stdout; logs must not interleave with them.
	config.OutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// loadConfiguration reads the -config file. A missing file at the default
// location selects the built-in defaults and the demo portfolio.
func loadConfiguration() (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(*configLocation)
	if err == nil {
		return conf, nil
	}
	if *configLocation == constants.DefaultConfigFile {
		if _, statErr := os.Stat(*configLocation); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, err
}

// session is everything a subcommand needs to build its report.
type session struct {
	conf    *config.Configuration
	logger  *zap.Logger
	ledger  *ledger.Ledger
	builder *report.Builder
	today   datetime.Date
	now     time.Time
	format  string
}

// openSession loads the configuration, logger and ledger. Failures are
// printed in the log format since no logger may exist yet.
func openSession(logging *config.LoggingConfig) (*session, subcommands.ExitStatus) {
	conf, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return nil, subcommands.ExitFailure
	}
	if *todayFlag != "" {
		conf.Today = *todayFlag
	}

	loggingConfig := conf.Logging
	if logging != nil {
		loggingConfig = mergeLogging(loggingConfig, *logging)
	}
	logger, err := initializeLogger(loggingConfig, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return nil, subcommands.ExitFailure
	}

	// Determine output format (CLI override takes precedence over config)
	format := conf.Output.Format
	if *outputFormatFlag != "" {
		format = *outputFormatFlag
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return nil, subcommands.ExitUsageError
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	now := time.Now()
	today, err := conf.ReferenceDate(now)
	if err != nil {
		logger.Error("invalid reference date",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return nil, subcommands.ExitUsageError
	}
	if conf.Today != "" {
		now = today.Time()
	}

	policy, err := conf.Policy.ToPolicy()
	if err != nil {
		logger.Error("invalid policy configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return nil, subcommands.ExitFailure
	}

	l, err := conf.LoadLedger()
	if err != nil {
		logger.Error("failed to load ledger",
			zap.String("op", "main"),
			zap.String("path", conf.LedgerPath()),
			zap.Error(err),
		)
		return nil, subcommands.ExitFailure
	}
	logger.Debug("ledger loaded",
		zap.String("op", "main"),
		zap.String("path", conf.LedgerPath()),
		zap.Int("properties", len(l.Properties)),
		zap.String("today", today.String()),
	)

	return &session{
		conf:    conf,
		logger:  logger,
		ledger:  l,
		builder: report.New(logger, calculator.New(logger, policy)),
		today:   today,
		now:     now,
		format:  format,
	}, subcommands.ExitSuccess
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// render writes v to stdout in the session's output format.
func (s *session) render(v output.Tabular, err error, op string) subcommands.ExitStatus {
	if err != nil {
		s.logger.Error("failed to build report",
			zap.String("op", op),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	if err := output.Write(os.Stdout, s.format, v); err != nil {
		s.logger.Error("failed to write report",
			zap.String("op", op),
			zap.String("format", s.format),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// mergeLogging overlays the set fields of override on base.
func mergeLogging(base, override config.LoggingConfig) config.LoggingConfig {
	if override.Level != "" {
		base.Level = override.Level
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.OutputFile != "" {
		base.OutputFile = override.OutputFile
	}
	return base
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands {
		commander.Register(c.cmd, c.group)
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
