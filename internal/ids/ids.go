// Package ids generates the opaque identifiers assigned to every new entity.
// IDs are UUID v7 strings, so they sort by creation time.
package ids

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces unique entity IDs.
type Generator interface {
	NewID() string
}

// UUIDGenerator generates UUID v7 strings.
type UUIDGenerator struct{}

// NewID returns a new UUID v7, falling back to a random v4 if the v7
// clock source fails.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// New returns a new UUID v7 string.
func New() string {
	return UUIDGenerator{}.NewID()
}

// Sequence generates deterministic IDs of the form prefix-1, prefix-2, ...
// It is meant for tests and fixtures.
type Sequence struct {
	Prefix string
	n      int
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	s.n++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "-" + strconv.Itoa(s.n)
}
