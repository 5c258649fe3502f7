package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/sld-tracker/internal/models"
)

func TestDropServiceCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, "run-1", sampleDrops()))

	svc, err := NewDropService(store, 8)
	require.NoError(t, err)

	drop, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "First", drop.Name)

	// replace the stored list underneath the cache
	renamed := sampleDrops()
	renamed[0].Name = "Renamed"
	require.NoError(t, store.ReplaceAll(ctx, "run-2", renamed))

	drop, err = svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "First", drop.Name, "cached drop is served until purged")

	svc.Purge()
	drop, err = svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", drop.Name)

	_, err = svc.Get(ctx, "404")
	assert.ErrorIs(t, err, ErrDropNotFound)
}

func TestDropServiceSkipsStaleLoadAfterPurge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, "run-1", sampleDrops()))

	svc, err := NewDropService(store, 8)
	require.NoError(t, err)

	// a lookup reads the old row, then a refresh replaces it and purges
	gen := svc.currentGeneration()
	stale, err := store.Get(ctx, "1")
	require.NoError(t, err)

	renamed := sampleDrops()
	renamed[0].Name = "Renamed"
	require.NoError(t, store.ReplaceAll(ctx, "run-2", renamed))
	svc.Purge()

	svc.addIfCurrent(gen, "1", *stale)
	assert.Equal(t, 0, svc.cache.Len())

	drop, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", drop.Name)
}

func TestDropServiceInvalidSize(t *testing.T) {
	_, err := NewDropService(nil, 0)
	assert.Error(t, err)
}

func TestDropServiceList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc, err := NewDropService(store, 8)
	require.NoError(t, err)

	drops, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, drops)

	require.NoError(t, store.ReplaceAll(ctx, "run-1", []models.EnrichedDrop{{RawDrop: models.RawDrop{DropNumber: "1"}}}))
	drops, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, drops, 1)
}
