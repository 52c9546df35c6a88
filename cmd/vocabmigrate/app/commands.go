package app

import (
	"fmt"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/constants"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/provenance"
	"github.com/agentstation/vocab/pkg/unify"
	"github.com/agentstation/vocab/pkg/validate"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// runFlags are the flags of the run command.
type runFlags struct {
	out          string
	report       string
	provenance   string
	quarantined  string
	metrics      string
	categories   string
	name         string
	description  string
	workers      int
	noQuarantine bool
	strict       bool
}

// NewRunCommand creates the run command.
func (a *App) NewRunCommand() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Reconcile input files into one collection",
		Long: `Run reads vocabulary records from every input file, reconciles them and
writes the collection as JSON.

Each file holds a JSON array of records or an object with the records under
"items", "vocabulary", "entries" or "data".`,
		Example: `  vocabmigrate run legacy.json current.json --out vocabulary.json --report report.yaml`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyRunFlags(cmd, flags)
			return a.run(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", constants.StdioPath, "collection output file (- for stdout)")
	cmd.Flags().StringVar(&flags.report, "report", "", "write the verification report as YAML")
	cmd.Flags().StringVar(&flags.provenance, "provenance", "", "write merge provenance as YAML")
	cmd.Flags().StringVar(&flags.quarantined, "quarantined", "", "write quarantined records as JSON")
	cmd.Flags().StringVar(&flags.metrics, "metrics", "", "write Prometheus metrics in text format")
	cmd.Flags().StringVar(&flags.categories, "categories", "", "category configuration YAML")
	cmd.Flags().StringVar(&flags.name, "name", "", "collection name")
	cmd.Flags().StringVar(&flags.description, "description", "", "collection description")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "goroutines used to unify records (0 uses all CPUs)")
	cmd.Flags().BoolVar(&flags.noQuarantine, "no-quarantine", false, "keep records with unresolved terms")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail when blocking issues remain after repair")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func (a *App) applyRunFlags(cmd *cobra.Command, flags *runFlags) {
	changed := cmd.Flags().Changed
	if changed("categories") {
		a.config.CategoriesFile = flags.categories
	}
	if changed("name") {
		a.config.CollectionName = flags.name
	}
	if changed("description") {
		a.config.CollectionDescription = flags.description
	}
	if changed("workers") {
		a.config.Workers = flags.workers
	}
	if changed("no-quarantine") {
		a.config.Quarantine = !flags.noQuarantine
	}
}

func (a *App) run(cmd *cobra.Command, paths []string, flags *runFlags) error {
	ctx := logging.WithLogger(cmd.Context(), a.logger)

	raws, err := readRaws(paths)
	if err != nil {
		return err
	}

	var (
		registry   *prometheus.Registry
		registerer prometheus.Registerer
	)
	if flags.metrics != "" {
		registry = prometheus.NewRegistry()
		registerer = registry
	}

	p, err := a.Pipeline(registerer)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, raws)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeJSON(out, flags.out, res.Collection); err != nil {
		return err
	}
	if flags.report != "" {
		if err := writeYAML(out, flags.report, res.Report); err != nil {
			return err
		}
	}
	if flags.quarantined != "" {
		if err := writeJSON(out, flags.quarantined, res.Quarantined); err != nil {
			return err
		}
	}
	if flags.provenance != "" {
		if err := provenance.Save(flags.provenance, res.Provenance); err != nil {
			return err
		}
	}
	if registry != nil {
		if err := prometheus.WriteToTextfile(flags.metrics, registry); err != nil {
			return errors.WrapIO("write", flags.metrics, err)
		}
	}

	a.logger.Info().Str("summary", res.Stats.Summary()).Msg("Migration complete")

	if flags.strict && !res.Validation.After.IsValid {
		return fmt.Errorf("%d blocking issues remain after repair", len(res.Validation.After.Issues))
	}
	return nil
}

// validateFlags are the flags of the validate command.
type validateFlags struct {
	fix        bool
	out        string
	report     string
	categories string
}

// NewValidateCommand creates the validate command.
func (a *App) NewValidateCommand() *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <collection.json>",
		Short: "Validate an existing collection",
		Long: `Validate checks a collection produced by run and prints the verification
report. With --fix it repairs what it can and writes the repaired collection.

The command fails when blocking issues remain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("categories") {
				a.config.CategoriesFile = flags.categories
			}
			return a.validate(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.fix, "fix", false, "repair fixable issues")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write the repaired collection as JSON (with --fix)")
	cmd.Flags().StringVar(&flags.report, "report", constants.StdioPath, "verification report output file (- for stdout)")
	cmd.Flags().StringVar(&flags.categories, "categories", "", "category configuration YAML")

	return cmd
}

func (a *App) validate(cmd *cobra.Command, path string, flags *validateFlags) error {
	ctx := logging.WithLogger(cmd.Context(), a.logger)

	c, err := readCollection(path)
	if err != nil {
		return err
	}
	v, err := a.Validator()
	if err != nil {
		return err
	}

	var (
		result *validate.Result
		report validate.Report
	)
	if flags.fix {
		outcome, err := v.ValidateAndFix(ctx, c)
		if err != nil {
			return err
		}
		result, report = outcome.After, outcome.Report
		if flags.out != "" {
			if err := writeJSON(cmd.OutOrStdout(), flags.out, outcome.Collection); err != nil {
				return err
			}
		}
	} else {
		result, err = v.Validate(ctx, c)
		if err != nil {
			return err
		}
		report = validate.NewReport(result, c.Name, vocabulary.SystemClock())
	}

	if err := writeYAML(cmd.OutOrStdout(), flags.report, report); err != nil {
		return err
	}
	if !result.IsValid {
		return fmt.Errorf("collection %s has %d blocking issues", path, len(result.Issues))
	}
	return nil
}

// categoriesFlags are the flags of the categories command.
type categoriesFlags struct {
	inputs     []string
	tree       bool
	categories string
}

// NewCategoriesCommand creates the categories command.
func (a *App) NewCategoriesCommand() *cobra.Command {
	flags := &categoriesFlags{}
	cmd := &cobra.Command{
		Use:   "categories [label]...",
		Short: "Show how category labels resolve",
		Long: `Categories prints, as YAML, the canonical category each label resolves to
and the rule that matched it. Labels come from the arguments and from the
records of every --input file.

With --tree it prints the configured taxonomy instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("categories") {
				a.config.CategoriesFile = flags.categories
			}
			return a.categories(cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.inputs, "input", "i", nil, "input files whose labels are resolved")
	cmd.Flags().BoolVar(&flags.tree, "tree", false, "print the taxonomy tree")
	cmd.Flags().StringVar(&flags.categories, "categories", "", "category configuration YAML")

	return cmd
}

func (a *App) categories(cmd *cobra.Command, args []string, flags *categoriesFlags) error {
	cfg, err := a.CategoryConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flags.tree {
		return writeYAML(out, constants.StdioPath, cfg.Taxonomy().Tree())
	}

	labels := slices.Clone(args)
	if len(flags.inputs) > 0 {
		raws, err := readRaws(flags.inputs)
		if err != nil {
			return err
		}
		u, err := unify.New()
		if err != nil {
			return err
		}
		records, _, err := u.UnifyAll(logging.WithLogger(cmd.Context(), a.logger), raws)
		if err != nil {
			return err
		}
		for _, r := range records {
			for _, c := range r.Categories {
				labels = append(labels, string(c))
			}
		}
	}
	if len(labels) == 0 {
		return errors.NewValidationError("labels", nil, "no labels given")
	}

	return writeYAML(out, constants.StdioPath, categories.Report(labels, cfg))
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("vocabmigrate %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}
