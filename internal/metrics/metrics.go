// Package metrics provides Prometheus metrics for pipeline runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stage labels.
const (
	StageUnify      = "unify"
	StageCategories = "categories"
	StageDedupe     = "dedupe"
	StageMerge      = "merge"
	StageValidate   = "validate"
	StageFix        = "fix"
	StageQuarantine = "quarantine"
)

// Finding kinds.
const (
	KindIssue   = "issue"
	KindWarning = "warning"
)

// Histogram buckets for stage durations: 1ms to ~4s.
const (
	bucketStart  = 0.001
	bucketFactor = 2
	bucketCount  = 12
)

// Recorder records pipeline activity. The pipeline depends on this
// interface so tests can substitute their own.
type Recorder interface {
	// RecordRecords adds n records leaving stage.
	RecordRecords(stage string, n int)
	// RecordGroup counts a duplicate group by similarity class.
	RecordGroup(class string)
	// RecordFinding counts a validation finding.
	RecordFinding(kind, severity string)
	// RecordFixes adds n repaired issues.
	RecordFixes(n int)
	// RecordDuration observes how long stage took.
	RecordDuration(stage string, seconds float64)
}

// PipelineMetrics contains Prometheus metrics for pipeline runs. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	recordsTotal         *prometheus.CounterVec
	duplicateGroupsTotal *prometheus.CounterVec
	findingsTotal        *prometheus.CounterVec
	fixesTotal           prometheus.Counter
	stageDuration        *prometheus.HistogramVec
}

var _ Recorder = (*PipelineMetrics)(nil)

// NewPipelineMetrics creates pipeline metrics and registers them with
// registerer.
func NewPipelineMetrics(registerer prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	m.initMetrics()
	if err := registerer.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocab_records_total",
			Help: "Total number of records produced by each pipeline stage",
		},
		[]string{"stage"},
	)

	m.duplicateGroupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocab_duplicate_groups_total",
			Help: "Total number of duplicate groups merged",
		},
		[]string{"class"}, // class: exact, grammatical, similar, content
	)

	m.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocab_validation_findings_total",
			Help: "Total number of validation findings",
		},
		[]string{"kind", "severity"}, // kind: issue, warning
	)

	m.fixesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vocab_fixes_total",
		Help: "Total number of validation issues repaired automatically",
	})

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocab_stage_duration_seconds",
			Help:    "Time taken by each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(bucketStart, bucketFactor, bucketCount),
		},
		[]string{"stage"},
	)
}

// Describe implements the Collector interface
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsTotal.Describe(ch)
	m.duplicateGroupsTotal.Describe(ch)
	m.findingsTotal.Describe(ch)
	m.fixesTotal.Describe(ch)
	m.stageDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsTotal.Collect(ch)
	m.duplicateGroupsTotal.Collect(ch)
	m.findingsTotal.Collect(ch)
	m.fixesTotal.Collect(ch)
	m.stageDuration.Collect(ch)
}

// RecordRecords adds n records leaving stage.
func (m *PipelineMetrics) RecordRecords(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsTotal.WithLabelValues(stage).Add(float64(n))
}

// RecordGroup counts a merged duplicate group.
func (m *PipelineMetrics) RecordGroup(class string) {
	if m == nil {
		return
	}
	m.duplicateGroupsTotal.WithLabelValues(class).Inc()
}

// RecordFinding counts a validation issue or warning.
func (m *PipelineMetrics) RecordFinding(kind, severity string) {
	if m == nil {
		return
	}
	m.findingsTotal.WithLabelValues(kind, severity).Inc()
}

// RecordFixes adds n repaired issues.
func (m *PipelineMetrics) RecordFixes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fixesTotal.Add(float64(n))
}

// RecordDuration observes the duration of stage in seconds.
func (m *PipelineMetrics) RecordDuration(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}
