package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/sld-tracker/internal/metrics"
	"github.com/codyseavey/sld-tracker/internal/models"
)

const (
	defaultScryfallBaseURL = "https://api.scryfall.com"
	defaultBulkType        = "all_cards"

	// Scryfall asks clients to stay around 10 requests per second
	scryfallRequestsPerSecond = 10

	progressLogInterval = 32 << 20
)

type ScryfallService struct {
	client         *http.Client
	downloadClient *http.Client // no overall timeout, bulk files are gigabytes
	baseURL        string
	limiter        *rate.Limiter
}

// NewScryfallService creates a client for baseURL, or the public API when empty.
func NewScryfallService(baseURL string) *ScryfallService {
	if baseURL == "" {
		baseURL = defaultScryfallBaseURL
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		downloadClient: &http.Client{},
		baseURL:        strings.TrimRight(baseURL, "/"),
		limiter:        rate.NewLimiter(scryfallRequestsPerSecond, scryfallRequestsPerSecond),
	}
}

type bulkDataList struct {
	Data []bulkDataItem `json:"data"`
}

type bulkDataItem struct {
	Type        string `json:"type"`
	DownloadURI string `json:"download_uri"`
	UpdatedAt   string `json:"updated_at"`
	Size        int64  `json:"size"`
}

// get performs a rate limited GET. The caller closes the body.
func (s *ScryfallService) get(ctx context.Context, client *http.Client, endpoint, reqURL string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sld-tracker/1.0")

	resp, err := client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	case http.StatusNotFound:
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
	default:
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
	}
	return resp, nil
}

// GetBulkDataURL returns the download URI of the bulk file with the given type.
func (s *ScryfallService) GetBulkDataURL(ctx context.Context, bulkType string) (string, error) {
	if bulkType == "" {
		bulkType = defaultBulkType
	}

	resp, err := s.get(ctx, s.client, "bulk_data", s.baseURL+"/bulk-data")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bulk data list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var list bulkDataList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode bulk data list: %w", err)
	}

	for _, item := range list.Data {
		if item.Type == bulkType {
			log.Printf("Scryfall: bulk data %q updated %s, %.1f MB", item.Type, item.UpdatedAt, float64(item.Size)/(1<<20))
			return item.DownloadURI, nil
		}
	}
	return "", fmt.Errorf("bulk data type %q not found", bulkType)
}

// DownloadBulkData streams downloadURL into dest. The file is written next to
// dest and renamed into place so a failed download never replaces a good one.
func (s *ScryfallService) DownloadBulkData(ctx context.Context, downloadURL, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	resp, err := s.get(ctx, s.downloadClient, "bulk_download", downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download bulk data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bulk data download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	progress := &progressWriter{total: resp.ContentLength}
	if _, err := io.Copy(tmp, io.TeeReader(resp.Body, progress)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bulk data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to move bulk data into place: %w", err)
	}

	log.Printf("Scryfall: downloaded %.1f MB to %s", float64(progress.written)/(1<<20), dest)
	return nil
}

type progressWriter struct {
	total   int64
	written int64
	logged  int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.written-p.logged >= progressLogInterval {
		p.logged = p.written
		if p.total > 0 {
			log.Printf("Scryfall: downloaded %.1f%% (%d MB)", float64(p.written)*100/float64(p.total), p.written>>20)
		} else {
			log.Printf("Scryfall: downloaded %d MB", p.written>>20)
		}
	}
	return len(b), nil
}

// CatalogOptions controls EnsureCatalog.
type CatalogOptions struct {
	Path     string
	URL      string // explicit download URL, skips the bulk data lookup
	BulkType string
	MaxAge   time.Duration
	Force    bool
}

// EnsureCatalog downloads the bulk catalog unless a copy younger than MaxAge
// already exists. It reports whether a download happened.
func (s *ScryfallService) EnsureCatalog(ctx context.Context, opts CatalogOptions) (bool, error) {
	if !opts.Force && CatalogIsFresh(opts.Path, opts.MaxAge, time.Now()) {
		log.Printf("Scryfall: catalog %s is recent, skipping download (use force to override)", opts.Path)
		return false, nil
	}

	downloadURL := opts.URL
	if downloadURL == "" {
		var err error
		downloadURL, err = s.GetBulkDataURL(ctx, opts.BulkType)
		if err != nil {
			return false, err
		}
	}

	log.Printf("Scryfall: downloading catalog from %s", downloadURL)
	if err := s.DownloadBulkData(ctx, downloadURL, opts.Path); err != nil {
		return false, err
	}
	return true, nil
}

// CatalogIsFresh reports whether path exists and was modified within maxAge of now.
func CatalogIsFresh(path string, maxAge time.Duration, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) < maxAge
}

// LoadCatalog reads a bulk catalog file from disk.
func LoadCatalog(path string) ([]models.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return catalog, nil
}

// DecodeCatalog decodes a JSON array of cards one element at a time, so the
// raw bulk file is never held in memory.
func DecodeCatalog(r io.Reader) ([]models.CatalogEntry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errors.New("catalog is not a JSON array")
	}

	catalog := []models.CatalogEntry{}
	for dec.More() {
		var entry models.CatalogEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode card %d: %w", len(catalog), err)
		}
		catalog = append(catalog, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read end of catalog: %w", err)
	}
	return catalog, nil
}

// GetCard looks up a single card by Scryfall ID.
// Returns nil, nil if the card is not found (404)
func (s *ScryfallService) GetCard(ctx context.Context, id string) (*models.CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/cards/%s", s.baseURL, url.PathEscape(id))
	return s.fetchCard(ctx, "card", reqURL)
}

// GetCardBySetAndNumber retrieves a specific card by set code and collector number
// Uses Scryfall's exact lookup: GET /cards/:set/:number
// Returns nil, nil if the card is not found (404)
func (s *ScryfallService) GetCardBySetAndNumber(ctx context.Context, setCode, number string) (*models.CatalogEntry, error) {
	// Scryfall expects path params, so we must PathEscape.
	setEscaped := url.PathEscape(strings.ToLower(setCode))
	numberEscaped := url.PathEscape(number)
	reqURL := fmt.Sprintf("%s/cards/%s/%s", s.baseURL, setEscaped, numberEscaped)
	return s.fetchCard(ctx, "card_by_number", reqURL)
}

func (s *ScryfallService) fetchCard(ctx context.Context, endpoint, reqURL string) (*models.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.get(ctx, s.client, endpoint, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var entry models.CatalogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return &entry, nil
}
