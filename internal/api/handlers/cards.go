package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/sld-tracker/internal/models"
	"github.com/codyseavey/sld-tracker/internal/services"
)

type CardHandler struct {
	scryfallService *services.ScryfallService
}

func NewCardHandler(scryfall *services.ScryfallService) *CardHandler {
	return &CardHandler{
		scryfallService: scryfall,
	}
}

// GetCard looks up a card on Scryfall by ID
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.scryfallService.GetCard(c.Request.Context(), c.Param("id"))
	h.respond(c, card, err)
}

// GetCardBySetAndNumber looks up a card by set code and collector number
func (h *CardHandler) GetCardBySetAndNumber(c *gin.Context) {
	card, err := h.scryfallService.GetCardBySetAndNumber(c.Request.Context(), c.Param("set"), c.Param("number"))
	h.respond(c, card, err)
}

func (h *CardHandler) respond(c *gin.Context, card *models.CatalogEntry, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, models.NewMatchedCard(card))
}
