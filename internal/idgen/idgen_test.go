package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	var g UUID

	id := g.NewID("generated")
	require.True(t, strings.HasPrefix(id, "generated-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "generated-"))
	assert.NoError(t, err)

	bare := g.NewID("")
	_, err = uuid.Parse(bare)
	assert.NoError(t, err)
	assert.NotEqual(t, bare, g.NewID(""))
}

func TestSequence(t *testing.T) {
	s := NewSequence()

	assert.Equal(t, "fixed-1", s.NewID("fixed"))
	assert.Equal(t, "fixed-2", s.NewID("fixed"))
	assert.Equal(t, "generated-1", s.NewID("generated"))

	first := s.NewID("")
	_, err := uuid.Parse(first)
	assert.NoError(t, err)
	assert.Equal(t, first, NewSequence().NewID(""), "bare ids are reproducible")
}

func TestSequenceConcurrent(t *testing.T) {
	s := NewSequence()
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = s.NewID("temp")
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
