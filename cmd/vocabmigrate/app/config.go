package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/vocab/pkg/constants"
	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/merge"
	"github.com/agentstation/vocab/pkg/validate"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// Pipeline configuration
	CategoriesFile        string
	Quarantine            bool
	Workers               int
	CollectionName        string
	CollectionDescription string

	// Stage configuration, read from the dedupe, merge and validate
	// sections of the config file
	Dedupe   dedupe.Config
	Merge    merge.Config
	Validate validate.Config
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. VOCAB_* environment variables
// 3. .env files
// 4. Config file (path, $VOCAB_CONFIG, or .vocab.yaml in . or $HOME)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("quarantine", true)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("vocabmigrate", "reading config file "+path, err)
		}
	} else {
		v.SetConfigType(constants.ConfigType)
		v.SetConfigName(constants.ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),

		ConfigFile: v.ConfigFileUsed(),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),

		CategoriesFile:        v.GetString("categories_file"),
		Quarantine:            v.GetBool("quarantine"),
		Workers:               v.GetInt("workers"),
		CollectionName:        v.GetString("collection.name"),
		CollectionDescription: v.GetString("collection.description"),

		Dedupe:   dedupe.DefaultConfig(),
		Merge:    merge.DefaultConfig(),
		Validate: validate.DefaultConfig(),
	}

	sections := []struct {
		key string
		dst any
	}{
		{"dedupe", &config.Dedupe},
		{"merge", &config.Merge},
		{"validate", &config.Validate},
	}
	for _, s := range sections {
		if err := v.UnmarshalKey(s.key, s.dst); err != nil {
			return nil, errors.NewConfigError("vocabmigrate", "decoding "+s.key+" section", err)
		}
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
