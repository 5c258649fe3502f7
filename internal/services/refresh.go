package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codyseavey/sld-tracker/internal/metrics"
	"github.com/codyseavey/sld-tracker/internal/models"
	"github.com/codyseavey/sld-tracker/internal/reconcile"
)

// ErrRefreshInProgress is returned when a refresh is requested while one is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// CatalogSource provides the local copy of the card catalog.
type CatalogSource interface {
	EnsureCatalog(ctx context.Context, opts CatalogOptions) (bool, error)
}

// DropSource provides the current list of drops.
type DropSource interface {
	Scrape(ctx context.Context) ([]models.RawDrop, error)
}

type RefreshConfig struct {
	CatalogPath   string
	BulkType      string
	CatalogMaxAge time.Duration
	DropsFile     string
}

type RefreshOptions struct {
	Force        bool   // download the catalog even when the local copy is fresh
	CatalogURL   string // explicit catalog download URL
	SkipDownload bool   // use whatever catalog is on disk
	MatchCards   bool
}

// RefreshService runs the full pipeline: catalog, scrape, reconcile, store, export.
type RefreshService struct {
	catalog    CatalogSource
	scraper    DropSource
	reconciler *reconcile.Reconciler
	store      *DropStore
	exporter   *ExportService
	cfg        RefreshConfig

	mu         sync.Mutex
	running    bool
	current    *models.SyncRun // snapshot of the run in progress, owned by mu
	onComplete []func()
}

func NewRefreshService(catalog CatalogSource, scraper DropSource, reconciler *reconcile.Reconciler,
	store *DropStore, exporter *ExportService, cfg RefreshConfig) *RefreshService {
	if reconciler == nil {
		reconciler = reconcile.NewReconciler(nil, nil)
	}
	if cfg.DropsFile == "" {
		cfg.DropsFile = "secret_lairs.json"
	}
	return &RefreshService{
		catalog:    catalog,
		scraper:    scraper,
		reconciler: reconciler,
		store:      store,
		exporter:   exporter,
		cfg:        cfg,
	}
}

// OnComplete registers fn to run after every refresh that stored drops.
func (s *RefreshService) OnComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
}

// IsRunning reports whether a refresh is in progress, and its run if so.
func (s *RefreshService) IsRunning() (bool, *models.SyncRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.current == nil {
		return s.running, nil
	}
	run := *s.current
	return true, &run
}

// setCurrent publishes a copy of run for IsRunning. The refresh goroutine
// owns the original.
func (s *RefreshService) setCurrent(run models.SyncRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.current = &run
	}
}

func (s *RefreshService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *RefreshService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.current = nil
}

// Run performs a refresh and blocks until it finishes.
func (s *RefreshService) Run(ctx context.Context, opts RefreshOptions) (*models.SyncRun, error) {
	if !s.begin() {
		return nil, ErrRefreshInProgress
	}
	defer s.end()
	return s.run(ctx, opts)
}

// Trigger starts a refresh in the background and returns immediately.
func (s *RefreshService) Trigger(ctx context.Context, opts RefreshOptions) error {
	if !s.begin() {
		return ErrRefreshInProgress
	}
	go func() {
		defer s.end()
		if _, err := s.run(ctx, opts); err != nil {
			log.Printf("Refresh: background refresh failed: %v", err)
		}
	}()
	return nil
}

func (s *RefreshService) run(ctx context.Context, opts RefreshOptions) (*models.SyncRun, error) {
	start := time.Now()
	run := &models.SyncRun{
		ID:        uuid.New().String(),
		StartedAt: start,
		Status:    models.SyncStatusRunning,
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		log.Printf("Refresh: failed to record run start: %v", err)
	}
	s.setCurrent(*run)
	log.Printf("Refresh: run %s started", run.ID)

	var catalog []models.CatalogEntry
	var catalogErr error
	if opts.MatchCards {
		catalog, catalogErr = s.prepareCatalog(ctx, opts)
		if catalogErr != nil {
			log.Printf("Refresh: warning: continuing without card matching: %v", catalogErr)
		}
	}

	raw, err := s.scraper.Scrape(ctx)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to scrape drops: %w", err))
	}

	var drops []models.EnrichedDrop
	var stats reconcile.Stats
	if catalog != nil {
		drops, stats, err = s.reconciler.Reconcile(raw, catalog)
		if err != nil {
			return s.fail(ctx, run, fmt.Errorf("failed to reconcile drops: %w", err))
		}
	} else {
		drops = unenriched(raw)
		stats = reconcile.Stats{Drops: len(drops)}
	}

	if err := s.store.ReplaceAll(ctx, run.ID, drops); err != nil {
		return s.fail(ctx, run, err)
	}
	if s.exporter != nil {
		path, err := s.exporter.SaveDrops(drops, s.cfg.DropsFile)
		if err != nil {
			return s.fail(ctx, run, err)
		}
		log.Printf("Refresh: saved %d drops to %s", len(drops), path)
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Drops = stats.Drops
	run.Parsed = stats.Parsed
	run.MatchedCards = stats.MatchedCards
	run.CatalogSize = stats.CatalogSize
	run.Status = models.SyncStatusSucceeded
	if catalogErr != nil {
		run.Status = models.SyncStatusPartial
		run.Error = catalogErr.Error()
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		log.Printf("Refresh: failed to record run result: %v", err)
	}
	s.setCurrent(*run)

	metrics.RefreshRunsTotal.WithLabelValues(string(run.Status)).Inc()
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	metrics.DropsStored.Set(float64(stats.Drops))
	metrics.DropsUnparsed.Set(float64(stats.Unparsed))
	metrics.MatchedCards.Set(float64(stats.MatchedCards))
	if catalog != nil {
		metrics.CatalogSize.Set(float64(stats.CatalogSize))
		metrics.CatalogSets.Set(float64(stats.CatalogSets))
	}

	s.mu.Lock()
	callbacks := append([]func(){}, s.onComplete...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}

	log.Printf("Refresh: run %s %s in %v (%d drops, %d parsed, %d cards matched)",
		run.ID, run.Status, time.Since(start).Round(time.Millisecond), stats.Drops, stats.Parsed, stats.MatchedCards)
	return run, nil
}

func (s *RefreshService) prepareCatalog(ctx context.Context, opts RefreshOptions) ([]models.CatalogEntry, error) {
	if !opts.SkipDownload {
		if s.catalog == nil {
			return nil, errors.New("no catalog source configured")
		}
		_, err := s.catalog.EnsureCatalog(ctx, CatalogOptions{
			Path:     s.cfg.CatalogPath,
			URL:      opts.CatalogURL,
			BulkType: s.cfg.BulkType,
			MaxAge:   s.cfg.CatalogMaxAge,
			Force:    opts.Force,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update catalog: %w", err)
		}
	}

	catalog, err := LoadCatalog(s.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Refresh: loaded %d cards from catalog", len(catalog))
	return catalog, nil
}

func (s *RefreshService) fail(ctx context.Context, run *models.SyncRun, err error) (*models.SyncRun, error) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.SyncStatusFailed
	run.Error = err.Error()

	// the caller's context may be the reason we failed
	if recErr := s.store.RecordRun(context.WithoutCancel(ctx), run); recErr != nil {
		log.Printf("Refresh: failed to record run failure: %v", recErr)
	}
	s.setCurrent(*run)
	metrics.RefreshRunsTotal.WithLabelValues(string(run.Status)).Inc()
	log.Printf("Refresh: run %s failed: %v", run.ID, err)
	return run, err
}

func unenriched(raw []models.RawDrop) []models.EnrichedDrop {
	drops := make([]models.EnrichedDrop, len(raw))
	for i, d := range raw {
		drops[i] = models.EnrichedDrop{RawDrop: d}
	}
	return drops
}

// RefreshWorker refreshes the drop list on a fixed interval
type RefreshWorker struct {
	service      *RefreshService
	interval     time.Duration
	runOnStartup bool
}

// NewRefreshWorker creates a worker. An interval of zero disables scheduled refreshes.
func NewRefreshWorker(service *RefreshService, interval time.Duration, runOnStartup bool) *RefreshWorker {
	return &RefreshWorker{
		service:      service,
		interval:     interval,
		runOnStartup: runOnStartup,
	}
}

// Start begins the background refresh loop
func (w *RefreshWorker) Start(ctx context.Context) {
	if w.runOnStartup {
		w.refresh(ctx)
	}

	if w.interval <= 0 {
		log.Println("Refresh worker: scheduled refreshes disabled")
		return
	}
	log.Printf("Refresh worker started: refreshing drops every %v", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresh worker stopping...")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	_, err := w.service.Run(ctx, RefreshOptions{MatchCards: true})
	switch {
	case errors.Is(err, ErrRefreshInProgress):
		log.Println("Refresh worker: refresh already running, skipping")
	case err != nil:
		log.Printf("Refresh worker: refresh failed: %v", err)
	}
}
