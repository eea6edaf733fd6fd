// Package memory holds in-process repositories used when no database is
// configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"abtest/domain/core"
	"abtest/ports"
)

// ShareRepository keeps shares in a map guarded by a RWMutex.
type ShareRepository struct {
	mu     sync.RWMutex
	byID   map[core.ShareID]*ports.SharedAnalysis
	byHash map[core.InputHash]core.ShareID
}

// NewShareRepository creates an empty repository
func NewShareRepository() *ShareRepository {
	return &ShareRepository{
		byID:   make(map[core.ShareID]*ports.SharedAnalysis),
		byHash: make(map[core.InputHash]core.ShareID),
	}
}

// Save stores a copy of share; an existing input hash returns the stored share.
func (r *ShareRepository) Save(ctx context.Context, share *ports.SharedAnalysis) (*ports.SharedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byHash[share.InputHash]; ok {
		existing := *r.byID[id]
		return &existing, nil
	}

	stored := *share
	if stored.ID.String() == "" {
		stored.ID = core.NewShareID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = core.Now()
	}
	r.byID[stored.ID] = &stored
	r.byHash[stored.InputHash] = stored.ID

	out := stored
	return &out, nil
}

// Get retrieves a share by ID
func (r *ShareRepository) Get(ctx context.Context, id core.ShareID) (*ports.SharedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	share, ok := r.byID[id]
	if !ok {
		return nil, core.NewShareNotFoundError(id.String())
	}
	out := *share
	return &out, nil
}

// Recent lists the newest shares first
func (r *ShareRepository) Recent(ctx context.Context, limit int) ([]*ports.SharedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = ports.DefaultRecentLimit
	}

	r.mu.RLock()
	shares := make([]*ports.SharedAnalysis, 0, len(r.byID))
	for _, share := range r.byID {
		out := *share
		shares = append(shares, &out)
	}
	r.mu.RUnlock()

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].CreatedAt == shares[j].CreatedAt {
			return shares[i].ID > shares[j].ID
		}
		return shares[j].CreatedAt.Before(shares[i].CreatedAt)
	})
	if len(shares) > limit {
		shares = shares[:limit]
	}
	return shares, nil
}
