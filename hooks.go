package vocab

import (
	"sync"

	"github.com/agentstation/vocab/pkg/dedupe"
	"github.com/agentstation/vocab/pkg/validate"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// Hook function types for pipeline events
type (
	// QuarantinedHook is called for each record set aside with unresolved terms
	QuarantinedHook func(record vocabulary.Record)

	// GroupMergedHook is called for each duplicate group collapsed into one record
	GroupMergedHook func(group dedupe.Group)

	// IssueHook is called for each validation issue left after repair
	IssueHook func(issue validate.Issue)
)

// hooks manages event callbacks for a pipeline
type hooks struct {
	mu            sync.RWMutex
	onQuarantined []QuarantinedHook
	onGroupMerged []GroupMergedHook
	onIssue       []IssueHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnQuarantined registers a callback for quarantined records
func (h *hooks) OnQuarantined(fn QuarantinedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onQuarantined = append(h.onQuarantined, fn)
}

// OnGroupMerged registers a callback for merged duplicate groups
func (h *hooks) OnGroupMerged(fn GroupMergedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onGroupMerged = append(h.onGroupMerged, fn)
}

// OnIssue registers a callback for remaining validation issues
func (h *hooks) OnIssue(fn IssueHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onIssue = append(h.onIssue, fn)
}

func (h *hooks) triggerQuarantined(records []vocabulary.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range records {
		for _, hook := range h.onQuarantined {
			hook(r)
		}
	}
}

func (h *hooks) triggerGroupsMerged(groups []dedupe.Group) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, g := range groups {
		for _, hook := range h.onGroupMerged {
			hook(g)
		}
	}
}

func (h *hooks) triggerIssues(issues []validate.Issue) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, issue := range issues {
		for _, hook := range h.onIssue {
			hook(issue)
		}
	}
}
