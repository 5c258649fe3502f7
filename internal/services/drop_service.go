package services

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/sld-tracker/internal/metrics"
	"github.com/codyseavey/sld-tracker/internal/models"
)

// DropService serves stored drops to the web layer. Single drop lookups are
// cached; Purge must be called whenever the stored list changes.
type DropService struct {
	store *DropStore
	cache *lru.Cache[string, models.EnrichedDrop] // drop number -> drop

	mu         sync.Mutex
	generation uint64 // bumped by Purge
}

func NewDropService(store *DropStore, cacheSize int) (*DropService, error) {
	cache, err := lru.New[string, models.EnrichedDrop](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create drop cache: %w", err)
	}
	return &DropService{store: store, cache: cache}, nil
}

func (s *DropService) List(ctx context.Context) ([]models.EnrichedDrop, error) {
	return s.store.List(ctx)
}

// Get returns the drop with the given number, or ErrDropNotFound.
func (s *DropService) Get(ctx context.Context, dropNumber string) (*models.EnrichedDrop, error) {
	if drop, ok := s.cache.Get(dropNumber); ok {
		metrics.DropCacheHits.Inc()
		return &drop, nil
	}
	metrics.DropCacheMisses.Inc()

	gen := s.currentGeneration()
	drop, err := s.store.Get(ctx, dropNumber)
	if err != nil {
		return nil, err
	}
	s.addIfCurrent(gen, dropNumber, *drop)
	return drop, nil
}

func (s *DropService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// addIfCurrent caches drop unless a Purge ran since gen was read; the row
// may predate the refresh that triggered it.
func (s *DropService) addIfCurrent(gen uint64, dropNumber string, drop models.EnrichedDrop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.cache.Add(dropNumber, drop)
	}
}

// LastRun returns the most recent refresh run, nil when there has been none.
func (s *DropService) LastRun(ctx context.Context) (*models.SyncRun, error) {
	return s.store.LastRun(ctx)
}

// Purge empties the lookup cache.
func (s *DropService) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Purge()
}
