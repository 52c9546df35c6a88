package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/provenance"
	"github.com/agentstation/vocab/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const input = `[
  {"version":1,"id":"a1","german":"Apfel","bulgarian":"ябълка","partOfSpeech":"noun","difficulty":1,"categories":["food"]},
  {"id":"a2","german":"Apfel","bulgarian":"ябълка","category":"Lebensmittel"},
  {"word":"куче","translation":"Hund"},
  {"text":"???"}
]`

func newTestApp(t *testing.T) *App {
	t.Helper()
	config, err := LoadConfig("")
	require.NoError(t, err)
	config.LogOutput = "discard"

	a, err := New("test", "abc123", "2025-06-01", WithConfig(config))
	require.NoError(t, err)
	return a
}

// execute runs args against a fresh root command and returns stdout.
func execute(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeTestFile(t, dir, "legacy.json", input)
	out := filepath.Join(dir, "out", "vocabulary.json")
	report := filepath.Join(dir, "report.yaml")
	prov := filepath.Join(dir, "provenance.yaml")
	quarantined := filepath.Join(dir, "quarantined.json")
	metrics := filepath.Join(dir, "metrics.prom")

	_, err := execute(t, newTestApp(t), "run", in,
		"--out", out,
		"--report", report,
		"--provenance", prov,
		"--quarantined", quarantined,
		"--metrics", metrics,
		"--name", "Legacy import",
	)
	require.NoError(t, err)

	c, err := readCollection(out)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount)
	assert.Equal(t, "Legacy import", c.Name)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "totalItems: 2")

	file, err := provenance.Load(prov)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Provenance)

	data, err = os.ReadFile(quarantined)
	require.NoError(t, err)
	var records []vocabulary.Record
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 1)

	data, err = os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vocab_records_total")
	assert.Contains(t, string(data), "vocab_duplicate_groups_total")
}

func TestRunCommandStdout(t *testing.T) {
	dir := t.TempDir()
	in := writeTestFile(t, dir, "wrapped.json", `{"vocabulary":`+input+`}`)

	stdout, err := execute(t, newTestApp(t), "run", in, "--no-quarantine")
	require.NoError(t, err)

	var c vocabulary.Collection
	require.NoError(t, json.Unmarshal([]byte(stdout), &c))
	assert.Equal(t, 3, c.ItemCount)
}

func TestRunCommandErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, newTestApp(t), "run")
	assert.Error(t, err, "inputs are required")

	_, err = execute(t, newTestApp(t), "run", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "missing.json not found")

	bad := writeTestFile(t, dir, "bad.json", `{"rows":[]}`)
	_, err = execute(t, newTestApp(t), "run", bad)
	assert.Error(t, err)

	empty := writeTestFile(t, dir, "empty.json", `[]`)
	_, err = execute(t, newTestApp(t), "run", empty)
	assert.Error(t, err)
}

func cleanItem(id, de, bg, exDE, exBG string) vocabulary.Record {
	created := utc.New(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	return vocabulary.Record{
		ID:           id,
		SourceTerm:   de,
		TargetTerm:   bg,
		PartOfSpeech: vocabulary.Noun,
		Difficulty:   1,
		Categories:   []vocabulary.Category{"food"},
		Grammar:      &vocabulary.Grammar{Gender: vocabulary.Masculine},
		Examples:     []vocabulary.Example{{SourceTerm: exDE, TargetTerm: exBG}},
		Notes:        &vocabulary.Notes{General: "A very common word in everyday speech."},
		Etymology:    "Old High German",
		Metadata:     vocabulary.Metadata{Frequency: 50},
		CreatedAt:    created,
		UpdatedAt:    created,
		Version:      vocabulary.CanonicalVersion,
	}
}

func writeCollection(t *testing.T, dir string, items ...vocabulary.Record) string {
	t.Helper()
	c := vocabulary.NewCollection(vocabulary.CollectionInfo{
		ID:          "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Name:        "German-Bulgarian",
		Description: "Collection used by the command tests",
		Now:         items[0].CreatedAt,
	}, items)
	path := filepath.Join(dir, "collection.json")
	require.NoError(t, writeJSON(nil, path, c))
	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	apple := cleanItem("a1", "Apfel", "ябълка", "Der Apfel ist rot.", "Ябълката е червена.")

	t.Run("valid collection", func(t *testing.T) {
		path := writeCollection(t, dir, apple)
		stdout, err := execute(t, newTestApp(t), "validate", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "totalItems: 1")
	})

	t.Run("blocking issue", func(t *testing.T) {
		eat := cleanItem("e1", "essen", "ям", "Wir essen Brot.", "Ние ядем хляб.")
		eat.PartOfSpeech = vocabulary.Verb
		path := writeCollection(t, dir, apple, eat)

		_, err := execute(t, newTestApp(t), "validate", path)
		assert.Error(t, err)

		fixed := filepath.Join(dir, "fixed.json")
		_, err = execute(t, newTestApp(t), "validate", path, "--fix", "--out", fixed)
		require.NoError(t, err)

		c, err := readCollection(fixed)
		require.NoError(t, err)
		require.Len(t, c.Items, 2)
		assert.Nil(t, c.Items[1].Grammar)
	})
}

func TestCategoriesCommand(t *testing.T) {
	a := newTestApp(t)

	stdout, err := execute(t, a, "categories", "Lebensmittel", "Obst")
	require.NoError(t, err)
	assert.Contains(t, stdout, "food")
	assert.Contains(t, stdout, "unmapped")

	dir := t.TempDir()
	in := writeTestFile(t, dir, "legacy.json", input)
	stdout, err = execute(t, newTestApp(t), "categories", "--input", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Lebensmittel")

	stdout, err = execute(t, newTestApp(t), "categories", "--tree")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fruits")

	_, err = execute(t, newTestApp(t), "categories")
	assert.Error(t, err)
}

func TestCategoriesCommandCustomConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestFile(t, dir, "categories.yaml", "customMappings:\n  Obst: fruits\n")

	stdout, err := execute(t, newTestApp(t), "categories", "Obst", "--categories", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "fruits")
	assert.NotContains(t, stdout, "unmapped")
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "vocabmigrate test")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"missing file", pkgerrors.NewNotFoundError("file", "in.json"), ExitUsage},
		{"bad config", pkgerrors.NewConfigError("config", "unreadable", nil), ExitUsage},
		{"no records", pkgerrors.WrapStage("run", pkgerrors.ErrEmptyInput), ExitUsage},
		{"canceled", pkgerrors.WrapCanceled("merge", context.Canceled), ExitCanceled},
		{"other", pkgerrors.WrapIO("write", "out.json", os.ErrPermission), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
