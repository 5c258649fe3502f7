package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/codyseavey/sld-tracker/internal/services"
)

var downloadForce bool

func init() {
	downloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "download even if the local catalog is recent")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Downloads the Scryfall bulk card catalog into the data directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := services.CatalogOptions{
			Path:     cfg.CatalogPath(),
			BulkType: cfg.ScryfallBulkType,
			MaxAge:   cfg.CatalogMaxAge,
			Force:    downloadForce,
		}
		if len(args) == 1 {
			opts.URL = args[0]
		}

		downloaded, err := services.NewScryfallService(cfg.ScryfallBaseURL).EnsureCatalog(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if downloaded {
			log.Printf("Catalog saved to %s", opts.Path)
		}
		return nil
	},
}
