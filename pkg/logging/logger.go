// Package logging provides structured logging for the vocabulary pipeline
// using zerolog. Console output is used when stderr is a terminal and JSON
// output otherwise, so batch runs under a scheduler produce machine
// readable logs.
//
// Every line logged inside a pipeline run carries the run id, and stage
// code tags its lines with the stage name:
//
//	ctx = logging.WithRunID(ctx, "run-7")
//	ctx = logging.WithStage(ctx, "dedupe")
//	logging.FromContext(ctx).Debug().Int("groups", 4).Msg("Found duplicate groups")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentstation/vocab/pkg/constants"
)

// Environment variables read by the default logger before any
// configuration is loaded.
var (
	EnvLogLevel  = constants.EnvPrefix + "_LOG_LEVEL"
	EnvLogFormat = constants.EnvPrefix + "_LOG_FORMAT"
)

var defaultLogger = NewLoggerFromConfig(envConfig())

// envConfig reads the default logger settings from the environment.
func envConfig() *Config {
	cfg := DefaultConfig()
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Default returns the process-wide logger. Stages log through it when their
// context carries no logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

func isatty() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}
