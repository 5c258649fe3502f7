package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/codyseavey/sld-tracker/internal/database"
	"github.com/codyseavey/sld-tracker/internal/models"
	"github.com/codyseavey/sld-tracker/internal/reconcile"
	"github.com/codyseavey/sld-tracker/internal/services"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "download the catalog even if the local copy is recent")
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(initCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the drop list, matches it against the local catalog, and saves it.",
	Long:  "Scrapes the drop list, matches it against the local catalog, and saves it.\nDrops are stored without cards when no catalog has been downloaded.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := runRefresh(cmd, services.RefreshOptions{SkipDownload: true, MatchCards: true})
		if err != nil {
			return err
		}
		if run.Status == models.SyncStatusPartial {
			log.Printf("Warning: drops saved without card data: %s", run.Error)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Downloads the catalog and builds the drop list in one step.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := runRefresh(cmd, services.RefreshOptions{Force: initForce, MatchCards: true})
		if err != nil {
			return err
		}
		if run.Status != models.SyncStatusSucceeded {
			return fmt.Errorf("data initialization incomplete: %s", run.Error)
		}
		log.Println("Data initialization completed successfully")
		return nil
	},
}

func runRefresh(cmd *cobra.Command, opts services.RefreshOptions) (*models.SyncRun, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	if err := database.Initialize(cfg.DBPath, cfg.Debug); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	parser := reconcile.NewRangeParser(cfg.DefaultSetCode,
		reconcile.WithParserLogger(logger),
		reconcile.WithMaxRangeSpan(cfg.MaxRangeSpan))
	reconciler := reconcile.NewReconciler(parser,
		reconcile.NewMatcher(reconcile.WithMatcherLogger(logger)),
		reconcile.WithReconcilerLogger(logger))

	refresh := services.NewRefreshService(
		services.NewScryfallService(cfg.ScryfallBaseURL),
		services.NewDropScraper(cfg.DropTableURL),
		reconciler,
		services.NewDropStore(database.GetDB()),
		services.NewExportService(cfg.DataDir),
		services.RefreshConfig{
			CatalogPath:   cfg.CatalogPath(),
			BulkType:      cfg.ScryfallBulkType,
			CatalogMaxAge: cfg.CatalogMaxAge,
			DropsFile:     cfg.DropsFile,
		},
	)
	return refresh.Run(cmd.Context(), opts)
}
