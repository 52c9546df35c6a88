// Package app provides the application context for the vocabmigrate CLI.
// It centralizes configuration, logging and pipeline construction so
// commands only deal with files.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/vocab"
	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/validate"
)

// App represents the vocabmigrate application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// Configuration is loaded from .env files, VOCAB_* environment variables
// and the optional config file.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// CategoryConfig returns the configured category taxonomy, read from the
// categories file when one is set.
func (a *App) CategoryConfig() (categories.Config, error) {
	if a.config.CategoriesFile == "" {
		return categories.DefaultConfig(), nil
	}
	data, err := readFile(a.config.CategoriesFile)
	if err != nil {
		return categories.Config{}, err
	}
	return categories.ParseConfig(data)
}

// Pipeline creates a pipeline from the app configuration. A non-nil
// registerer receives the pipeline metrics.
func (a *App) Pipeline(registerer prometheus.Registerer) (vocab.Pipeline, error) {
	catCfg, err := a.CategoryConfig()
	if err != nil {
		return nil, err
	}

	opts := []vocab.Option{
		vocab.WithLogger(a.logger),
		vocab.WithCategoryConfig(catCfg),
		vocab.WithDedupeConfig(a.config.Dedupe),
		vocab.WithMergeConfig(a.config.Merge),
		vocab.WithValidateConfig(a.config.Validate),
		vocab.WithQuarantine(a.config.Quarantine),
		vocab.WithCollectionInfo(a.config.CollectionName, a.config.CollectionDescription),
	}
	if a.config.Workers > 0 {
		opts = append(opts, vocab.WithWorkers(a.config.Workers))
	}
	if registerer != nil {
		opts = append(opts, vocab.WithMetrics(registerer))
	}
	return vocab.New(opts...)
}

// Validator creates a validator from the app configuration.
func (a *App) Validator() (*validate.Validator, error) {
	catCfg, err := a.CategoryConfig()
	if err != nil {
		return nil, err
	}
	cfg := a.config.Validate
	cfg.Categories = catCfg
	return validate.New(cfg)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
