package models

import (
	"encoding/json"
)

// RawDrop is one row of the Secret Lair drop table as scraped from the wiki.
type RawDrop struct {
	DropNumber  string `json:"drop_number"`
	Name        string `json:"name"`
	CardNumbers string `json:"card_numbers"`
}

// MatchedCard is the subset of a catalog entry attached to a drop.
type MatchedCard struct {
	Name            string       `json:"name"`
	CollectorNumber string       `json:"collector_number"`
	Set             string       `json:"set"`
	ID              string       `json:"id"`
	ImageURI        string       `json:"image_uri"`
	Prices          MatchedPrice `json:"prices"`
}

type MatchedPrice struct {
	USD     *string `json:"usd"`
	USDFoil *string `json:"usd_foil"`
	EUR     *string `json:"eur"`
	EURFoil *string `json:"eur_foil"`
	Tix     *string `json:"tix"`
}

// EnrichedDrop is a drop annotated with the catalog cards it contains.
//
// Cards is nil when the drop's card numbers could not be parsed, and a
// non-nil (possibly empty) slice when they could. The JSON form follows the
// same rule: "cards" is omitted for unparsed drops and is [] for parsed drops
// without matches.
type EnrichedDrop struct {
	RawDrop
	Cards []MatchedCard `json:"cards"`
}

// Parsed reports whether the drop's card numbers were understood.
func (d EnrichedDrop) Parsed() bool {
	return d.Cards != nil
}

func (d EnrichedDrop) MarshalJSON() ([]byte, error) {
	type plain EnrichedDrop
	out := struct {
		plain
		Cards *[]MatchedCard `json:"cards,omitempty"`
	}{plain: plain(d)}
	if d.Cards != nil {
		out.Cards = &d.Cards
	}
	return json.Marshal(out)
}

func (d *EnrichedDrop) UnmarshalJSON(data []byte) error {
	type plain EnrichedDrop
	var in struct {
		plain
		Cards *[]MatchedCard `json:"cards"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = EnrichedDrop(in.plain)
	d.Cards = nil
	if in.Cards != nil {
		d.Cards = *in.Cards
		if d.Cards == nil {
			d.Cards = []MatchedCard{}
		}
	}
	return nil
}

// NewMatchedCard projects a catalog entry into the card shape stored on a drop.
func NewMatchedCard(entry *CatalogEntry) MatchedCard {
	name := entry.Name
	if name == "" {
		name = "Unknown"
	}
	return MatchedCard{
		Name:            name,
		CollectorNumber: entry.CollectorNumber,
		Set:             entry.Set,
		ID:              entry.ID,
		ImageURI:        entry.NormalImageURL(),
		Prices: MatchedPrice{
			USD:     entry.Prices.USD,
			USDFoil: entry.Prices.USDFoil,
			EUR:     entry.Prices.EUR,
			EURFoil: entry.Prices.EURFoil,
			Tix:     entry.Prices.Tix,
		},
	}
}
