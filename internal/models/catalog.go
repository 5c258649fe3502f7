package models

// CatalogEntry is one card record from the Scryfall bulk catalog. Only the
// fields needed to annotate drops are decoded.
type CatalogEntry struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Set             string        `json:"set"`
	CollectorNumber string        `json:"collector_number"`
	ImageURIs       *ImageURIs    `json:"image_uris"`
	CardFaces       []CardFace    `json:"card_faces"`
	Prices          CatalogPrices `json:"prices"`
}

type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type CardFace struct {
	ImageURIs *ImageURIs `json:"image_uris"`
}

// CatalogPrices holds Scryfall's decimal-string prices. A missing key and an
// explicit null both decode to nil.
type CatalogPrices struct {
	USD     *string `json:"usd"`
	USDFoil *string `json:"usd_foil"`
	EUR     *string `json:"eur"`
	EURFoil *string `json:"eur_foil"`
	Tix     *string `json:"tix"`
}

// NormalImageURL returns the normal-size image, falling back to the first
// card face for double-faced cards. Empty when the card has no imagery.
func (c *CatalogEntry) NormalImageURL() string {
	if c.ImageURIs != nil {
		return c.ImageURIs.Normal
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].ImageURIs != nil {
		return c.CardFaces[0].ImageURIs.Normal
	}
	return ""
}
