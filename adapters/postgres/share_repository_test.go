package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abtest/domain/core"
	"abtest/internal/migration"
	"abtest/ports"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping database test: TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestShareRepository_SaveGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewShareRepository(db)
	ctx := context.Background()

	hash := core.NewInputHash([]byte(core.NewID().String()))
	saved, err := repo.Save(ctx, &ports.SharedAnalysis{Token: "tok", InputHash: hash, Metrics: 2})
	require.NoError(t, err)
	assert.False(t, saved.ID.String() == "")

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, hash, got.InputHash)
	assert.Equal(t, 2, got.Metrics)

	again, err := repo.Save(ctx, &ports.SharedAnalysis{Token: "tok", InputHash: hash, Metrics: 2})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestShareRepository_NotFound(t *testing.T) {
	repo := NewShareRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), core.NewShareID())
	assert.ErrorIs(t, err, core.ErrShareNotFound)
}
