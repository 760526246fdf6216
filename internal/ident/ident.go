// Package ident generates identifiers for profiles and scan records.
package ident

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers. Implementations must provide at least 36
// bits of entropy per id so collisions stay negligible for local histories.
type Generator interface {
	NewID() string
}

// Random returns short random ids built from version 4 UUIDs: the first 12
// hex digits give 48 random bits.
type Random struct{}

// NewID implements Generator.
func (Random) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Sequence returns predictable ids, optionally starting with a fixed list.
// It is meant for tests and demos.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	fixed  []string
	next   int
}

// NewSequence returns a Sequence that first yields fixed, then prefix-N ids.
func NewSequence(prefix string, fixed ...string) *Sequence {
	return &Sequence{prefix: prefix, fixed: fixed}
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fixed) > 0 {
		id := s.fixed[0]
		s.fixed = s.fixed[1:]
		return id
	}
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next)
}
