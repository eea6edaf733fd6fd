package ports

import (
	"context"

	"abtest/domain/core"
)

// DefaultRecentLimit applies when Recent is called with a non-positive limit.
const DefaultRecentLimit = 20

// SharedAnalysis is a stored share token plus the metadata needed to serve it.
type SharedAnalysis struct {
	ID        core.ShareID   `json:"id"`
	Token     string         `json:"token"`
	InputHash core.InputHash `json:"input_hash"`
	Metrics   int            `json:"metrics"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// ShareRepository persists share tokens so long inputs can be shared by ID
// instead of by URL.
type ShareRepository interface {
	// Save stores a share. Saving the same input hash twice returns the
	// existing record.
	Save(ctx context.Context, share *SharedAnalysis) (*SharedAnalysis, error)

	// Get retrieves a share by ID; core.ErrShareNotFound when absent.
	Get(ctx context.Context, id core.ShareID) (*SharedAnalysis, error)

	// Recent lists the newest shares first, at most DefaultRecentLimit when
	// limit <= 0.
	Recent(ctx context.Context, limit int) ([]*SharedAnalysis, error)
}
