// Package provenance records which member record and merge strategy
// supplied each field of a merged vocabulary record.
package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/vocab/pkg/constants"
	"github.com/agentstation/vocab/pkg/errors"
)

// Provenance tracks the origin of a merged field value.
type Provenance struct {
	Source    string   `yaml:"source" json:"source"`       // Member record id that supplied the value
	Field     string   `yaml:"field" json:"field"`         // Field name
	Value     any      `yaml:"value,omitempty" json:"value,omitempty"`
	Timestamp utc.Time `yaml:"timestamp" json:"timestamp"` // When the merge ran
	Strategy  string   `yaml:"strategy" json:"strategy"`   // Merge strategy applied
	Quality   float64  `yaml:"quality" json:"quality"`     // Quality score of the source member
	Reason    string   `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Map tracks provenance for many records.
type Map map[string][]Provenance // key is "recordID:field"

// Tracker collects provenance while records are merged. Implementations
// are safe for concurrent use.
type Tracker interface {
	// Track records provenance for a field
	Track(recordID, field string, p Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(recordID, field string) []Provenance

	// FindByRecord retrieves all provenance for a record, keyed by field
	FindByRecord(recordID string) map[string][]Provenance

	// Map returns a copy of the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
	now        func() utc.Time
}

// NewTracker creates a tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
		now:        utc.Now,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(recordID, field string, history Provenance) {
	if !p.enabled {
		return
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = p.now()
	}
	if history.Field == "" {
		history.Field = field
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key := makeKey(recordID, field)
	p.provenance[key] = append(p.provenance[key], history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(recordID, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.provenance[makeKey(recordID, field)])
}

// FindByRecord retrieves all provenance for a record.
func (p *tracker) FindByRecord(recordID string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string][]Provenance)
	prefix := recordID + ":"
	for key, infos := range p.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[field] = slices.Clone(infos)
		}
	}
	return result
}

// Map returns the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = slices.Clone(v)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provenance = make(Map)
}

// makeKey joins a record id and field. Record ids may contain colons, so
// the field is split off at the last one.
func makeKey(recordID, field string) string {
	return recordID + ":" + field
}

func splitKey(key string) (recordID, field string, ok bool) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// Report summarizes provenance per merged record.
type Report struct {
	Records map[string]RecordProvenance
}

// RecordProvenance contains provenance for a single merged record.
type RecordProvenance struct {
	ID     string
	Fields map[string]Field
}

// Field contains the provenance of a single field.
type Field struct {
	Current Provenance   // Value kept in the merged record
	History []Provenance // Every contribution in tracking order
	// Sources lists the distinct member ids that contributed.
	Sources []string
}

// GenerateReport groups a provenance map by record. The most recently
// tracked contribution of a field is reported as current.
func GenerateReport(provenance Map) *Report {
	report := &Report{Records: make(map[string]RecordProvenance)}

	for key, infos := range provenance {
		recordID, field, ok := splitKey(key)
		if !ok || len(infos) == 0 {
			continue
		}

		rec, exists := report.Records[recordID]
		if !exists {
			rec = RecordProvenance{ID: recordID, Fields: make(map[string]Field)}
		}

		var sources []string
		for _, info := range infos {
			if !slices.Contains(sources, info.Source) {
				sources = append(sources, info.Source)
			}
		}
		rec.Fields[field] = Field{
			Current: infos[len(infos)-1],
			History: infos,
			Sources: sources,
		}
		report.Records[recordID] = rec
	}

	return report
}

// String renders the report with records and fields sorted.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	ids := make([]string, 0, len(r.Records))
	for id := range r.Records {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		rec := r.Records[id]
		sb.WriteString(rec.ID + "\n")
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		fields := make([]string, 0, len(rec.Fields))
		for f := range rec.Fields {
			fields = append(fields, f)
		}
		slices.Sort(fields)

		for _, f := range fields {
			fp := rec.Fields[f]
			fmt.Fprintf(&sb, "  %s: %s from %s\n", f, fp.Current.Strategy, strings.Join(fp.Sources, ", "))
			if fp.Current.Reason != "" {
				fmt.Fprintf(&sb, "    Reason: %s\n", fp.Current.Reason)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// File is the on-disk provenance document.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	return &pf, nil
}

// Save writes m to path as YAML, creating parent directories.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
