package app

import (
	"context"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal"
	"abtest/internal/errors"
	"abtest/internal/sharing"
	"abtest/ports"
)

// ShareService turns metric sets into shareable tokens and stored links
type ShareService struct {
	repo   ports.ShareRepository
	logger *internal.Logger
}

// NewShareService creates a share service
func NewShareService(repo ports.ShareRepository, logger *internal.Logger) *ShareService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ShareService{repo: repo, logger: logger}
}

// Encode returns the token for set without storing it
func (s *ShareService) Encode(set *experiment.MetricSet) (string, error) {
	return sharing.Encode(set)
}

// Decode restores a metric set from a token
func (s *ShareService) Decode(token string) (*experiment.MetricSet, error) {
	set, err := sharing.Decode(token)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return set, nil
}

// Create stores set and returns the share record. Sharing identical input
// twice yields the same ID.
func (s *ShareService) Create(ctx context.Context, set *experiment.MetricSet) (*ports.SharedAnalysis, error) {
	token, err := sharing.Encode(set)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode share")
	}

	share, err := s.repo.Save(ctx, &ports.SharedAnalysis{
		ID:        core.NewShareID(),
		Token:     token,
		InputHash: core.NewInputHash([]byte(token)),
		Metrics:   set.Len(),
		CreatedAt: core.Now(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store share")
	}

	s.logger.Info("share %s created (%d metrics, %d byte token)", share.ID, share.Metrics, len(share.Token))
	return share, nil
}

// Resolve loads a stored share and decodes its metric set
func (s *ShareService) Resolve(ctx context.Context, rawID string) (*experiment.MetricSet, *ports.SharedAnalysis, error) {
	id, err := core.ParseShareID(rawID)
	if err != nil {
		return nil, nil, errors.NotFound("share " + rawID)
	}

	share, err := s.repo.Get(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, nil, errors.WithCode(errors.CodeNotFound, err)
		}
		return nil, nil, errors.Wrap(err, "failed to load share")
	}

	set, err := sharing.Decode(share.Token)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "stored share %s is corrupt", id)
	}
	return set, share, nil
}

// Recent lists recently stored shares
func (s *ShareService) Recent(ctx context.Context, limit int) ([]*ports.SharedAnalysis, error) {
	shares, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shares")
	}
	return shares, nil
}
