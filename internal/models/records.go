package models

import (
	"time"
)

// DropRecord is the persisted form of an EnrichedDrop. Position keeps the
// wiki table order across reloads.
type DropRecord struct {
	ID          uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	Position    int              `json:"position" gorm:"not null;index"`
	DropNumber  string           `json:"drop_number" gorm:"index"`
	Name        string           `json:"name"`
	CardNumbers string           `json:"card_numbers"`
	Parsed      bool             `json:"parsed"`
	SyncRunID   string           `json:"sync_run_id" gorm:"index"`
	Cards       []DropCardRecord `json:"cards" gorm:"foreignKey:DropID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (DropRecord) TableName() string {
	return "drops"
}

type DropCardRecord struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	DropID          uint    `json:"drop_id" gorm:"not null;index"`
	Position        int     `json:"position"`
	CardID          string  `json:"card_id" gorm:"index"`
	Name            string  `json:"name"`
	CollectorNumber string  `json:"collector_number"`
	Set             string  `json:"set"`
	ImageURI        string  `json:"image_uri"`
	PriceUSD        *string `json:"price_usd"`
	PriceUSDFoil    *string `json:"price_usd_foil"`
	PriceEUR        *string `json:"price_eur"`
	PriceEURFoil    *string `json:"price_eur_foil"`
	PriceTix        *string `json:"price_tix"`
}

func (DropCardRecord) TableName() string {
	return "drop_cards"
}

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusPartial   SyncStatus = "partial" // drops stored without card matching
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncRun records one refresh of the drop list.
type SyncRun struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	StartedAt    time.Time  `json:"started_at" gorm:"index"`
	FinishedAt   *time.Time `json:"finished_at"`
	Status       SyncStatus `json:"status"`
	Drops        int        `json:"drops"`
	Parsed       int        `json:"parsed"`
	MatchedCards int        `json:"matched_cards"`
	CatalogSize  int        `json:"catalog_size"`
	Error        string     `json:"error,omitempty"`
}

// NewDropRecord converts an enriched drop into its persisted form.
func NewDropRecord(position int, runID string, drop EnrichedDrop) DropRecord {
	rec := DropRecord{
		Position:    position,
		DropNumber:  drop.DropNumber,
		Name:        drop.Name,
		CardNumbers: drop.CardNumbers,
		Parsed:      drop.Parsed(),
		SyncRunID:   runID,
	}
	for i, c := range drop.Cards {
		rec.Cards = append(rec.Cards, DropCardRecord{
			Position:        i,
			CardID:          c.ID,
			Name:            c.Name,
			CollectorNumber: c.CollectorNumber,
			Set:             c.Set,
			ImageURI:        c.ImageURI,
			PriceUSD:        c.Prices.USD,
			PriceUSDFoil:    c.Prices.USDFoil,
			PriceEUR:        c.Prices.EUR,
			PriceEURFoil:    c.Prices.EURFoil,
			PriceTix:        c.Prices.Tix,
		})
	}
	return rec
}

// ToEnrichedDrop converts a record back, restoring the nil/empty card list
// distinction from Parsed. Cards must be preloaded in position order.
func (r DropRecord) ToEnrichedDrop() EnrichedDrop {
	drop := EnrichedDrop{
		RawDrop: RawDrop{
			DropNumber:  r.DropNumber,
			Name:        r.Name,
			CardNumbers: r.CardNumbers,
		},
	}
	if !r.Parsed {
		return drop
	}
	drop.Cards = make([]MatchedCard, 0, len(r.Cards))
	for _, c := range r.Cards {
		drop.Cards = append(drop.Cards, MatchedCard{
			Name:            c.Name,
			CollectorNumber: c.CollectorNumber,
			Set:             c.Set,
			ID:              c.CardID,
			ImageURI:        c.ImageURI,
			Prices: MatchedPrice{
				USD:     c.PriceUSD,
				USDFoil: c.PriceUSDFoil,
				EUR:     c.PriceEUR,
				EURFoil: c.PriceEURFoil,
				Tix:     c.PriceTix,
			},
		})
	}
	return drop
}
