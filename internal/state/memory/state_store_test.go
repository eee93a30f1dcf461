package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/economic-index-etl/internal/ingest"
)

func TestStateStoreRoundTripPerTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStateStore()

	_, ok, err := store.Get(ctx, "igpm", "raw/ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.False(t, ok)

	state := ingest.IngestionState{
		SeriesID:            "igpm",
		LastReferencePeriod: "2024-02",
		LastExecutionTime:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		TargetDestination:   "raw/ECONOMIC/IGPM/",
	}
	require.NoError(t, store.Put(ctx, state))

	got, ok, err := store.Get(ctx, "igpm", "raw/ECONOMIC/IGPM/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, got)

	_, ok, err = store.Get(ctx, "igpm", "curated/ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.False(t, ok, "markers are scoped per target")
}

func TestStateStorePutRequiresKey(t *testing.T) {
	t.Parallel()

	err := NewStateStore().Put(context.Background(), ingest.IngestionState{SeriesID: "igpm"})
	assert.Error(t, err)
}
