package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/sld-tracker/internal/services"
)

type RefreshHandler struct {
	ctx            context.Context
	refreshService *services.RefreshService
	dropService    *services.DropService
}

// NewRefreshHandler creates the handler. Refreshes it starts run under ctx
// rather than the request context so they outlive the request.
func NewRefreshHandler(ctx context.Context, refresh *services.RefreshService, drops *services.DropService) *RefreshHandler {
	return &RefreshHandler{
		ctx:            ctx,
		refreshService: refresh,
		dropService:    drops,
	}
}

type refreshRequest struct {
	Force      bool   `json:"force"`
	CatalogURL string `json:"catalog_url"`
}

// TriggerRefresh starts a background refresh of the drop list
func (h *RefreshHandler) TriggerRefresh(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err := h.refreshService.Trigger(h.ctx, services.RefreshOptions{
		Force:      req.Force,
		CatalogURL: req.CatalogURL,
		MatchCards: true,
	})
	if errors.Is(err, services.ErrRefreshInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// GetRefreshStatus reports the running refresh, if any, and the last recorded run
func (h *RefreshHandler) GetRefreshStatus(c *gin.Context) {
	running, current := h.refreshService.IsRunning()

	lastRun, err := h.dropService.LastRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"running":  running,
		"current":  current,
		"last_run": lastRun,
	})
}
