package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/binotree/internal/adapters/storage"
	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(t *testing.T, n int, typ domain.OptionType) domain.PricingResult {
	t.Helper()
	res, err := domain.Price(domain.OptionParameters{S0: 100, K: 95, R: 0.04, T: 0.5, Sigma: 0.3, N: n, Type: typ})
	require.NoError(t, err)
	return res
}

func TestSQLiteStorage_SaveAndGetRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	want := makeResult(t, 6, domain.Put)

	id, err := db.SaveRun(ctx, want)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := db.GetRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, run.ID)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
	assert.Equal(t, want.Params, run.Result.Params)
	assert.Equal(t, want.OptionPrice, run.Result.OptionPrice)
	assert.Equal(t, want.U, run.Result.U)
	assert.Equal(t, want.D, run.Result.D)
	assert.Equal(t, want.P, run.Result.P)
	assert.Equal(t, want.Dt, run.Result.Dt)
	assert.Equal(t, want.Lattice, run.Result.Lattice)
}

func TestSQLiteStorage_ZeroStepRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	id, err := db.SaveRun(ctx, makeResult(t, 0, domain.Call))
	require.NoError(t, err)

	run, err := db.GetRun(ctx, id)
	require.NoError(t, err)
	require.Len(t, run.Result.Lattice, 1)
	assert.Equal(t, 5.0, run.Result.OptionPrice)
}

func TestSQLiteStorage_GetRun_NotFound(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestSQLiteStorage_ListRuns(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.SaveRun(ctx, makeResult(t, 3, domain.Call))
	require.NoError(t, err)
	_, err = db.SaveRun(ctx, makeResult(t, 4, domain.Put))
	require.NoError(t, err)

	runs, err := db.ListRuns(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Nil(t, r.Result.Lattice, "headers only")
		assert.NotZero(t, r.Result.OptionPrice)
	}
}

func TestSQLiteStorage_ListRuns_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, runs)
}
