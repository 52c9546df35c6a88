// Package vocab reconciles German-Bulgarian vocabulary exported from
// several legacy formats into one validated collection.
//
// A Pipeline unifies raw records into the canonical shape, quarantines the
// ones whose terms could not be recovered, standardizes their categories,
// merges duplicate clusters and finally validates and repairs the
// assembled collection:
//
//	p, err := vocab.New(vocab.WithCollectionInfo("A1 words", ""))
//	if err != nil {
//		return err
//	}
//	res, err := p.Run(ctx, raws)
package vocab

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/vocab/internal/metrics"
	"github.com/agentstation/vocab/pkg/categories"
	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/logging"
	"github.com/agentstation/vocab/pkg/merge"
	"github.com/agentstation/vocab/pkg/provenance"
	"github.com/agentstation/vocab/pkg/unify"
	"github.com/agentstation/vocab/pkg/validate"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Pipeline runs the reconciliation stages over raw records.
type Pipeline interface {
	// Run reconciles raws into a validated collection.
	Run(ctx context.Context, raws []unify.Raw) (*Result, error)

	// OnQuarantined registers a callback for records set aside with
	// unresolved terms
	OnQuarantined(QuarantinedHook)

	// OnGroupMerged registers a callback for merged duplicate groups
	OnGroupMerged(GroupMergedHook)

	// OnIssue registers a callback for validation issues left after repair
	OnIssue(IssueHook)
}

// Result is the outcome of one pipeline run.
type Result struct {
	// RunID tags every log line of the run.
	RunID       string                 `json:"runId" yaml:"runId"`
	Collection  *vocabulary.Collection `json:"collection" yaml:"collection"`
	Report      validate.Report        `json:"report" yaml:"report"`
	Validation  *validate.Outcome      `json:"-" yaml:"-"`
	Quarantined []vocabulary.Record    `json:"quarantined,omitempty" yaml:"quarantined,omitempty"`
	Groups      []dedupe.Group         `json:"groups,omitempty" yaml:"groups,omitempty"`
	Provenance  provenance.Map         `json:"-" yaml:"-"`
	Stats       Stats                  `json:"stats" yaml:"stats"`
}

// Stats counts records through each stage of a run.
type Stats struct {
	Input       int                         `json:"input" yaml:"input"`
	Unify       unify.Stats                 `json:"unify" yaml:"unify"`
	Quarantined int                         `json:"quarantined" yaml:"quarantined"`
	Categories  map[vocabulary.Category]int `json:"categories" yaml:"categories"`
	Groups      int                         `json:"groups" yaml:"groups"`
	MergePasses int                         `json:"mergePasses" yaml:"mergePasses"`
	Output      int                         `json:"output" yaml:"output"`
	Fixed       int                         `json:"fixed" yaml:"fixed"`
	Duration    time.Duration               `json:"duration" yaml:"duration"`
}

// Summary returns a one-line description of the run.
func (s Stats) Summary() string {
	return fmt.Sprintf("%d in, %d quarantined, %d groups merged in %d passes, %d out, %d fixed (%s)",
		s.Input, s.Quarantined, s.Groups, s.MergePasses, s.Output, s.Fixed, s.Duration.Round(time.Millisecond))
}

// pipeline is the internal implementation of the Pipeline interface
type pipeline struct {
	*hooks
	opts     *options
	unifier  *unify.Unifier
	mergeCfg merge.Config
	// validator is stateless between runs.
	validator *validate.Validator
	metrics   *metrics.PipelineMetrics
}

// New creates a Pipeline with the given options. Every stage configuration
// is validated up front.
func New(opts ...Option) (Pipeline, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	p := &pipeline{hooks: newHooks(), opts: o, mergeCfg: o.mergeConfig()}
	if err := p.mergeCfg.Validate(); err != nil {
		return nil, err
	}

	unifyOpts := []unify.Option{unify.WithIDGenerator(o.ids), unify.WithClock(o.clock)}
	if o.workers > 0 {
		unifyOpts = append(unifyOpts, unify.WithWorkers(o.workers))
	}
	if p.unifier, err = unify.New(unifyOpts...); err != nil {
		return nil, fmt.Errorf("creating unifier: %w", err)
	}

	vcfg := o.validate
	vcfg.Categories = p.mergeCfg.Categories
	p.validator, err = validate.New(vcfg, validate.WithIDGenerator(o.ids), validate.WithClock(o.clock))
	if err != nil {
		return nil, err
	}

	if o.registerer != nil {
		if p.metrics, err = metrics.NewPipelineMetrics(o.registerer); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return p, nil
}

// Run unifies, quarantines, categorizes, merges and validates raws.
func (p *pipeline) Run(ctx context.Context, raws []unify.Raw) (*Result, error) {
	if len(raws) == 0 {
		return nil, errors.ErrEmptyInput
	}
	if p.opts.logger != nil && !logging.HasLogger(ctx) {
		ctx = logging.WithLogger(ctx, p.opts.logger)
	}
	ctx = logging.WithRunID(ctx, p.opts.ids.NewID("run"))
	logger := logging.FromContext(ctx)
	start := time.Now()

	res := &Result{RunID: logging.RunID(ctx), Stats: Stats{Input: len(raws)}}

	// Unify
	if err := canceled(ctx, metrics.StageUnify); err != nil {
		return nil, err
	}
	stageStart := time.Now()
	records, ustats, err := p.unifier.UnifyAll(ctx, raws)
	if err != nil {
		return nil, err
	}
	res.Stats.Unify = ustats
	p.observe(metrics.StageUnify, len(records), stageStart)

	// Quarantine
	if p.opts.quarantine {
		records, res.Quarantined = quarantine(records)
		res.Stats.Quarantined = len(res.Quarantined)
		p.metrics.RecordRecords(metrics.StageQuarantine, len(res.Quarantined))
		p.triggerQuarantined(res.Quarantined)
		if len(res.Quarantined) > 0 {
			logger.Warn().Int("quarantined", len(res.Quarantined)).Msg("Set aside records with unresolved terms")
		}
	}

	// Categories
	if err := canceled(ctx, metrics.StageCategories); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	records, res.Stats.Categories = categories.ConsolidateAll(records, p.mergeCfg.Categories)
	p.observe(metrics.StageCategories, len(records), stageStart)

	// Dedupe and merge
	if err := canceled(ctx, metrics.StageMerge); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	engine, err := merge.New(p.mergeCfg,
		merge.WithIDGenerator(p.opts.ids),
		merge.WithClock(p.opts.clock),
		merge.WithTracker(provenance.NewTracker(p.opts.provenance)),
	)
	if err != nil {
		return nil, err
	}
	merged, err := engine.MergeItems(ctx, records)
	if err != nil {
		return nil, err
	}
	res.Groups = merged.Groups
	res.Provenance = engine.Provenance()
	res.Stats.Groups = len(merged.Groups)
	res.Stats.MergePasses = merged.Passes
	for _, g := range merged.Groups {
		p.metrics.RecordGroup(string(g.Class))
	}
	p.triggerGroupsMerged(merged.Groups)
	p.observe(metrics.StageMerge, len(merged.Records), stageStart)

	collection := engine.Assemble(merged.Records, vocabulary.CollectionInfo{
		Name:        p.opts.name,
		Description: p.opts.description,
	})

	// Validate and fix
	if err := canceled(ctx, metrics.StageValidate); err != nil {
		return nil, err
	}
	stageStart = time.Now()
	outcome, err := p.validator.ValidateAndFix(ctx, collection)
	if err != nil {
		return nil, err
	}
	p.recordFindings(outcome.After)
	p.metrics.RecordFixes(outcome.Fixed)
	p.triggerIssues(outcome.After.Issues)
	p.observe(metrics.StageValidate, len(collection.Items), stageStart)

	res.Collection = outcome.Collection
	res.Report = outcome.Report
	res.Validation = outcome
	res.Stats.Output = len(collection.Items)
	res.Stats.Fixed = outcome.Fixed
	res.Stats.Duration = time.Since(start)

	logger.Info().
		Int("input", res.Stats.Input).
		Int("quarantined", res.Stats.Quarantined).
		Int("groups", res.Stats.Groups).
		Int("output", res.Stats.Output).
		Int("fixed", res.Stats.Fixed).
		Bool("valid", outcome.After.IsValid).
		Dur("duration", res.Stats.Duration).
		Msg("Pipeline run complete")

	return res, nil
}

// quarantine splits records into resolved and unresolved ones, keeping order.
func quarantine(records []vocabulary.Record) (kept, unresolved []vocabulary.Record) {
	kept = make([]vocabulary.Record, 0, len(records))
	for _, r := range records {
		if r.IsUnresolved() {
			unresolved = append(unresolved, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, unresolved
}

// canceled returns an error matching errors.ErrCanceled once ctx is done.
func canceled(ctx context.Context, stage string) error {
	return errors.WrapCanceled(stage, ctx.Err())
}

func (p *pipeline) observe(stage string, records int, start time.Time) {
	p.metrics.RecordRecords(stage, records)
	p.metrics.RecordDuration(stage, time.Since(start).Seconds())
}

func (p *pipeline) recordFindings(res *validate.Result) {
	for _, issue := range res.Issues {
		p.metrics.RecordFinding(metrics.KindIssue, string(issue.Severity))
	}
	for _, warning := range res.Warnings {
		p.metrics.RecordFinding(metrics.KindWarning, string(warning.Severity))
	}
}
