package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/agentstation/utc"
)

// Report is the verification report of a validation run.
type Report struct {
	Timestamp     utc.Time `json:"timestamp" yaml:"timestamp"`
	TotalItems    int      `json:"totalItems" yaml:"totalItems"`
	VerifiedItems int      `json:"verifiedItems" yaml:"verifiedItems"`
	InvalidItems  int      `json:"invalidItems" yaml:"invalidItems"`
	Issues        []Issue  `json:"issues" yaml:"issues"`
	Warnings      []Issue  `json:"warnings" yaml:"warnings"`
	// PassRate is the percentage of items without blocking issues, rounded
	// to two decimals.
	PassRate float64 `json:"passRate" yaml:"passRate"`
	Summary  Summary `json:"summary" yaml:"summary"`
}

// Summary holds the report counts by severity.
type Summary struct {
	CollectionName string `json:"collectionName" yaml:"collectionName"`
	TotalItems     int    `json:"totalItems" yaml:"totalItems"`
	VerifiedItems  int    `json:"verifiedItems" yaml:"verifiedItems"`
	InvalidItems   int    `json:"invalidItems" yaml:"invalidItems"`
	CriticalIssues int    `json:"criticalIssues" yaml:"criticalIssues"`
	HighIssues     int    `json:"highIssues" yaml:"highIssues"`
	MediumIssues   int    `json:"mediumIssues" yaml:"mediumIssues"`
	LowIssues      int    `json:"lowIssues" yaml:"lowIssues"`
	HighWarnings   int    `json:"highWarnings" yaml:"highWarnings"`
	MediumWarnings int    `json:"mediumWarnings" yaml:"mediumWarnings"`
	LowWarnings    int    `json:"lowWarnings" yaml:"lowWarnings"`
}

// NewReport builds the verification report for res.
func NewReport(res *Result, collectionName string, now utc.Time) Report {
	total, invalid := res.ValidatedItems, res.InvalidItems
	verified := total - invalid

	rate := 100.0
	if total > 0 {
		rate = math.Round(float64(verified)/float64(total)*100*100) / 100
	}

	s := Summary{
		CollectionName: collectionName,
		TotalItems:     total,
		VerifiedItems:  verified,
		InvalidItems:   invalid,
	}
	for _, issue := range res.Issues {
		switch issue.Severity {
		case SeverityCritical:
			s.CriticalIssues++
		case SeverityHigh:
			s.HighIssues++
		case SeverityMedium:
			s.MediumIssues++
		case SeverityLow:
			s.LowIssues++
		}
	}
	for _, w := range res.Warnings {
		switch w.Severity {
		case SeverityHigh:
			s.HighWarnings++
		case SeverityMedium:
			s.MediumWarnings++
		case SeverityLow:
			s.LowWarnings++
		}
	}

	return Report{
		Timestamp:     now,
		TotalItems:    total,
		VerifiedItems: verified,
		InvalidItems:  invalid,
		Issues:        res.Issues,
		Warnings:      res.Warnings,
		PassRate:      rate,
		Summary:       s,
	}
}

// String returns a human-readable summary.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verification report for %s\n", r.Summary.CollectionName)
	fmt.Fprintf(&b, "  Items: %d verified of %d (%.2f%%)\n", r.VerifiedItems, r.TotalItems, r.PassRate)
	fmt.Fprintf(&b, "  Issues: %d critical, %d high, %d medium, %d low\n",
		r.Summary.CriticalIssues, r.Summary.HighIssues, r.Summary.MediumIssues, r.Summary.LowIssues)
	fmt.Fprintf(&b, "  Warnings: %d high, %d medium, %d low\n",
		r.Summary.HighWarnings, r.Summary.MediumWarnings, r.Summary.LowWarnings)
	return b.String()
}
