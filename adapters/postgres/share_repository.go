package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"

	"abtest/domain/core"
	"abtest/internal/errors"
	"abtest/ports"
)

// ShareRepositoryImpl implements ShareRepository for PostgreSQL
type ShareRepositoryImpl struct {
	db *sqlx.DB
}

// NewShareRepository creates a new PostgreSQL share repository
func NewShareRepository(db *sqlx.DB) ports.ShareRepository {
	return &ShareRepositoryImpl{db: db}
}

type shareRow struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	InputHash string    `db:"input_hash"`
	Metrics   int       `db:"metric_count"`
	CreatedAt time.Time `db:"created_at"`
}

func (row shareRow) toShare() *ports.SharedAnalysis {
	return &ports.SharedAnalysis{
		ID:        core.ShareID(row.ID),
		Token:     row.Token,
		InputHash: core.InputHash(row.InputHash),
		Metrics:   row.Metrics,
		CreatedAt: core.NewTimestamp(row.CreatedAt.UTC()),
	}
}

// Save inserts the share, or returns the stored one for the same input hash
func (r *ShareRepositoryImpl) Save(ctx context.Context, share *ports.SharedAnalysis) (*ports.SharedAnalysis, error) {
	if share.ID.String() == "" {
		share.ID = core.NewShareID()
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = core.Now()
	}

	var row shareRow
	err := r.db.GetContext(ctx, &row, `
		INSERT INTO shared_analyses (id, token, input_hash, metric_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (input_hash) DO UPDATE SET input_hash = EXCLUDED.input_hash
		RETURNING id, token, input_hash, metric_count, created_at
	`, share.ID.String(), share.Token, share.InputHash.String(), share.Metrics, share.CreatedAt.Time())
	if err != nil {
		return nil, errors.DatabaseError("failed to save shared analysis", err)
	}

	return row.toShare(), nil
}

// Get retrieves a share by ID
func (r *ShareRepositoryImpl) Get(ctx context.Context, id core.ShareID) (*ports.SharedAnalysis, error) {
	var row shareRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, token, input_hash, metric_count, created_at
		FROM shared_analyses
		WHERE id = $1
	`, id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewShareNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load shared analysis", err)
	}

	return row.toShare(), nil
}

// Recent lists the newest shares first
func (r *ShareRepositoryImpl) Recent(ctx context.Context, limit int) ([]*ports.SharedAnalysis, error) {
	if limit <= 0 {
		limit = ports.DefaultRecentLimit
	}

	var rows []shareRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, token, input_hash, metric_count, created_at
		FROM shared_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list shared analyses", err)
	}

	shares := make([]*ports.SharedAnalysis, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, row.toShare())
	}
	return shares, nil
}
