package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/codyseavey/sld-tracker/internal/api"
	"github.com/codyseavey/sld-tracker/internal/config"
	"github.com/codyseavey/sld-tracker/internal/database"
	"github.com/codyseavey/sld-tracker/internal/metrics"
	"github.com/codyseavey/sld-tracker/internal/reconcile"
	"github.com/codyseavey/sld-tracker/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to sld-tracker.yaml")
	flag.Parse()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Initialize database
	if err := database.Initialize(cfg.DBPath, cfg.Debug); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.FailInterruptedRuns(database.GetDB()); err != nil {
		log.Printf("Warning: failed to close out interrupted refresh runs: %v", err)
	}

	// Initialize services
	scryfallService := services.NewScryfallService(cfg.ScryfallBaseURL)
	dropStore := services.NewDropStore(database.GetDB())
	exportService := services.NewExportService(cfg.DataDir)

	dropService, err := services.NewDropService(dropStore, cfg.DropCacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize drop service: %v", err)
	}

	parser := reconcile.NewRangeParser(cfg.DefaultSetCode,
		reconcile.WithParserLogger(logger),
		reconcile.WithMaxRangeSpan(cfg.MaxRangeSpan))
	reconciler := reconcile.NewReconciler(parser,
		reconcile.NewMatcher(reconcile.WithMatcherLogger(logger)),
		reconcile.WithReconcilerLogger(logger))

	refreshService := services.NewRefreshService(
		scryfallService,
		services.NewDropScraper(cfg.DropTableURL),
		reconciler,
		dropStore,
		exportService,
		services.RefreshConfig{
			CatalogPath:   cfg.CatalogPath(),
			BulkType:      cfg.ScryfallBulkType,
			CatalogMaxAge: cfg.CatalogMaxAge,
			DropsFile:     cfg.DropsFile,
		},
	)
	refreshService.OnComplete(dropService.Purge)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedFromExport(ctx, dropStore, exportService, cfg.DropsFile)

	// Start refresh worker in background with panic recovery
	refreshWorker := services.NewRefreshWorker(refreshService, cfg.RefreshInterval, cfg.RefreshOnStartup)
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in refresh worker: %v - restarting in 30 seconds", r)
					}
				}()
				refreshWorker.Start(ctx)
			}()

			// Start returns on its own when scheduled refreshes are disabled
			if cfg.RefreshInterval <= 0 {
				return
			}

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Refresh worker restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router, err := api.SetupRouter(api.RouterDeps{
		Ctx:         ctx,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Scryfall:    scryfallService,
		Drops:       dropService,
		Refresh:     refreshService,
	})
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the refresh worker and any running refresh
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// seedFromExport loads the last exported drop list into an empty database,
// so a fresh install can serve pages before its first refresh.
func seedFromExport(ctx context.Context, store *services.DropStore, exporter *services.ExportService, dropsFile string) {
	count, err := store.Count(ctx)
	if err != nil {
		log.Printf("Failed to count stored drops: %v", err)
		return
	}
	if count > 0 {
		metrics.DropsStored.Set(float64(count))
		return
	}

	drops, err := exporter.LoadDrops(dropsFile)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("Failed to read exported drops: %v", err)
		return
	}
	if err := store.ReplaceAll(ctx, "import", drops); err != nil {
		log.Printf("Failed to import exported drops: %v", err)
		return
	}
	metrics.DropsStored.Set(float64(len(drops)))
	log.Printf("Imported %d drops from %s", len(drops), dropsFile)
}
