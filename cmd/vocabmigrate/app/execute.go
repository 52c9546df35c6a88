package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/vocab/pkg/errors"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	logLevel   string
}

// Execute runs the vocabmigrate CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:     "vocabmigrate",
		Short:   "German-Bulgarian vocabulary migration tool",
		Version: a.version,
		Long: `vocabmigrate reconciles vocabulary exported from legacy formats into one
canonical collection.

It unifies every input record, sets aside records whose terms could not be
recovered, standardizes categories, merges duplicates and validates and
repairs the result.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default is .vocab.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("vocabmigrate {{.Version}}\n")

	rootCmd.AddCommand(a.NewRunCommand())
	rootCmd.AddCommand(a.NewValidateCommand())
	rootCmd.AddCommand(a.NewCategoriesCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs. It reloads the
// configuration when --config names a file and rebuilds the logger with
// the flag values.
func (a *App) setupCommand(flags *globalFlags) error {
	if flags.configFile != "" {
		config, err := LoadConfig(flags.configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(flags.verbose || a.config.Verbose, flags.quiet || a.config.Quiet, flags.noColor || a.config.NoColor, flags.logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// Exit codes reported by ExitOnError.
const (
	ExitFailure  = 1
	ExitUsage    = 2
	ExitCanceled = 130
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCanceled(err):
		return ExitCanceled
	case errors.IsNotFound(err), errors.IsConfigError(err), errors.IsEmptyInput(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// ExitOnError is a helper that prints an error and exits with the status
// ExitCode reports for it.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(ExitCode(err))
	}
}
