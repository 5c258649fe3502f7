package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/codyseavey/sld-tracker/internal/models"
)

const DefaultDropTableURL = "https://mtg.wiki/page/Secret_Lair/Drop_Series"

// ErrNoDropTable is returned when the page has no wikitable to read drops from.
var ErrNoDropTable = errors.New("no drop table found on page")

// DropScraper reads the Secret Lair drop list from the MTG wiki.
type DropScraper struct {
	client *resty.Client
	url    string
}

func NewDropScraper(url string) *DropScraper {
	if url == "" {
		url = DefaultDropTableURL
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "sld-tracker/1.0")
	client.SetRetryCount(2)
	client.SetRetryWaitTime(2 * time.Second)

	return &DropScraper{
		client: client,
		url:    url,
	}
}

// Scrape fetches the drop table page and extracts every drop row.
func (s *DropScraper) Scrape(ctx context.Context) ([]models.RawDrop, error) {
	res, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drop table: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("drop table page returned status %d", res.StatusCode())
	}

	drops, err := ExtractDrops(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, err
	}
	log.Printf("DropScraper: found %d Secret Lair drops", len(drops))
	return drops, nil
}

// ExtractDrops reads the first wikitable in the document. The header row is
// skipped and rows with fewer than three cells are ignored; the first three
// cells give the drop number, name and card numbers.
func ExtractDrops(r io.Reader) ([]models.RawDrop, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse drop table page: %w", err)
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, ErrNoDropTable
	}

	drops := []models.RawDrop{}
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return drops, nil
	}
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		drops = append(drops, models.RawDrop{
			DropNumber:  strings.TrimSpace(cells.Eq(0).Text()),
			Name:        strings.TrimSpace(cells.Eq(1).Text()),
			CardNumbers: strings.TrimSpace(cells.Eq(2).Text()),
		})
	})
	return drops, nil
}
