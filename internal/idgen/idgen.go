// Package idgen provides the identifier generators injected into pipeline
// stages.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// UUID generates random version 4 identifiers.
type UUID struct{}

// NewID returns prefix followed by a random UUID. An empty prefix yields a
// bare UUID.
func (UUID) NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// Sequence generates predictable identifiers, numbering each prefix
// independently. It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewSequence returns an empty Sequence.
func NewSequence() *Sequence {
	return &Sequence{counts: make(map[string]int)}
}

// NewID returns prefix-N where N counts calls for that prefix starting at 1.
// An empty prefix yields a deterministic UUID derived from the counter so
// callers validating UUID syntax still accept it.
func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[prefix]++
	n := s.counts[prefix]
	if prefix == "" {
		return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "vocab-%d", n)).String()
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}
