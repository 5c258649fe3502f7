package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/sld-tracker/internal/api/handlers"
	"github.com/codyseavey/sld-tracker/internal/metrics"
	"github.com/codyseavey/sld-tracker/internal/services"
	"github.com/codyseavey/sld-tracker/internal/web"
)

// RouterDeps are the services the HTTP layer is built on.
type RouterDeps struct {
	// Ctx bounds refreshes started over HTTP; cancel it on shutdown.
	Ctx         context.Context
	CORSOrigins []string
	Scryfall    *services.ScryfallService
	Drops       *services.DropService
	Refresh     *services.RefreshService
}

func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	router := gin.Default()
	router.Use(metrics.GinMiddleware())

	// CORS configuration - allow origins from config or use defaults
	config := cors.DefaultConfig()
	if len(deps.CORSOrigins) > 0 {
		config.AllowOrigins = deps.CORSOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// Initialize handlers
	dropHandler := handlers.NewDropHandler(deps.Drops)
	cardHandler := handlers.NewCardHandler(deps.Scryfall)
	refreshHandler := handlers.NewRefreshHandler(ctx, deps.Refresh, deps.Drops)

	// Pages
	router.GET("/", dropHandler.IndexPage)
	router.GET("/secret-lair/:drop_number", dropHandler.DetailPage)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/secret-lairs", dropHandler.ListDrops)
		api.GET("/secret-lair/:drop_number", dropHandler.GetDrop)

		api.GET("/cards/:id", cardHandler.GetCard)
		api.GET("/sets/:set/cards/:number", cardHandler.GetCardBySetAndNumber)

		refresh := api.Group("/refresh")
		{
			refresh.POST("", refreshHandler.TriggerRefresh)
			refresh.GET("/status", refreshHandler.GetRefreshStatus)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		// Don't serve the HTML page for API routes
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		handlers.NotFoundPage(c)
	})

	return router, nil
}
