package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/sld-tracker/internal/services"
	"github.com/codyseavey/sld-tracker/internal/web"
)

type DropHandler struct {
	dropService *services.DropService
}

func NewDropHandler(dropService *services.DropService) *DropHandler {
	return &DropHandler{
		dropService: dropService,
	}
}

// ListDrops returns every drop in wiki table order
func (h *DropHandler) ListDrops(c *gin.Context) {
	drops, err := h.dropService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, drops)
}

func (h *DropHandler) GetDrop(c *gin.Context) {
	drop, err := h.dropService.Get(c.Request.Context(), c.Param("drop_number"))
	if errors.Is(err, services.ErrDropNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "drop not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, drop)
}

// IndexPage renders the drop list
func (h *DropHandler) IndexPage(c *gin.Context) {
	drops, err := h.dropService.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list drops: %v", err)
		c.String(http.StatusInternalServerError, "failed to load drops")
		return
	}
	c.HTML(http.StatusOK, web.IndexPage, gin.H{
		"Title": "Drops",
		"Drops": drops,
	})
}

// DetailPage renders a single drop with its cards and prices
func (h *DropHandler) DetailPage(c *gin.Context) {
	drop, err := h.dropService.Get(c.Request.Context(), c.Param("drop_number"))
	if errors.Is(err, services.ErrDropNotFound) {
		NotFoundPage(c)
		return
	}
	if err != nil {
		log.Printf("Failed to get drop %s: %v", c.Param("drop_number"), err)
		c.String(http.StatusInternalServerError, "failed to load drop")
		return
	}
	c.HTML(http.StatusOK, web.DetailPage, gin.H{
		"Title": drop.Name,
		"Drop":  drop,
	})
}

// NotFoundPage renders the 404 page
func NotFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, web.NotFoundPage, gin.H{
		"Title": "Not found",
	})
}
