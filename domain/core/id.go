package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AnalysisID ID
	ShareID    ID
)

// NewAnalysisID returns a fresh identifier for one analysis request.
func NewAnalysisID() AnalysisID { return AnalysisID(NewID()) }

// NewShareID returns a fresh identifier for a stored share.
func NewShareID() ShareID { return ShareID(NewID()) }

// String conversions for domain IDs
func (id AnalysisID) String() string { return ID(id).String() }
func (id ShareID) String() string    { return ID(id).String() }

// ParseShareID parses a string into ShareID. Only UUIDs are accepted so that
// arbitrary path segments never reach the repository.
func ParseShareID(s string) (ShareID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("share ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid share ID %q: %w", s, err)
	}
	return ShareID(parsed.String()), nil
}
