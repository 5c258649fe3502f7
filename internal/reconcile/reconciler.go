package reconcile

import (
	"errors"
	"log/slog"

	"github.com/codyseavey/sld-tracker/internal/models"
)

// ErrNilCatalog means the caller passed no catalog at all. An empty catalog
// is valid and simply matches nothing.
var ErrNilCatalog = errors.New("reconcile: catalog is nil")

// Stats summarizes one reconciliation pass.
type Stats struct {
	Drops        int `json:"drops"`
	Parsed       int `json:"parsed"`
	Unparsed     int `json:"unparsed"`
	WithCards    int `json:"with_cards"`
	MatchedCards int `json:"matched_cards"`
	CatalogSize  int `json:"catalog_size"`
	CatalogSets  int `json:"catalog_sets"`
}

// Reconciler annotates drops with the catalog cards their card numbers name.
type Reconciler struct {
	parser  *RangeParser
	matcher *Matcher
	logger  *slog.Logger
}

type ReconcilerOption func(*Reconciler)

func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconciler wires a parser and matcher. Nil arguments get defaults.
func NewReconciler(parser *RangeParser, matcher *Matcher, opts ...ReconcilerOption) *Reconciler {
	if parser == nil {
		parser = NewRangeParser(DefaultSetCode)
	}
	if matcher == nil {
		matcher = NewMatcher()
	}
	r := &Reconciler{
		parser:  parser,
		matcher: matcher,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile indexes catalog and enriches every drop. The result has one entry
// per input drop, in input order.
func (r *Reconciler) Reconcile(drops []models.RawDrop, catalog []models.CatalogEntry) ([]models.EnrichedDrop, Stats, error) {
	if catalog == nil {
		return nil, Stats{}, ErrNilCatalog
	}
	return r.ReconcileIndex(drops, BuildCatalogIndex(catalog))
}

// ReconcileIndex is Reconcile over a prebuilt index.
func (r *Reconciler) ReconcileIndex(drops []models.RawDrop, idx *CatalogIndex) ([]models.EnrichedDrop, Stats, error) {
	if idx == nil {
		return nil, Stats{}, ErrNilCatalog
	}

	stats := Stats{Drops: len(drops), CatalogSize: idx.Len(), CatalogSets: idx.SetCount()}
	r.logger.Debug("catalog indexed", "cards", stats.CatalogSize, "sets", stats.CatalogSets)
	out := make([]models.EnrichedDrop, 0, len(drops))

	for _, drop := range drops {
		enriched := models.EnrichedDrop{RawDrop: drop}

		cardRange, ok := r.parser.Parse(drop.CardNumbers)
		if !ok {
			stats.Unparsed++
			r.logger.Info("drop card numbers not parsed",
				"drop_number", drop.DropNumber, "name", drop.Name, "card_numbers", drop.CardNumbers)
			out = append(out, enriched)
			continue
		}
		stats.Parsed++

		matches := r.matcher.Match(&cardRange, idx)
		enriched.Cards = make([]models.MatchedCard, 0, len(matches))
		for _, entry := range matches {
			enriched.Cards = append(enriched.Cards, models.NewMatchedCard(entry))
		}
		if len(enriched.Cards) > 0 {
			stats.WithCards++
		}
		stats.MatchedCards += len(enriched.Cards)

		r.logger.Debug("drop reconciled",
			"drop_number", drop.DropNumber, "set_code", cardRange.SetCode, "matches", len(enriched.Cards))
		out = append(out, enriched)
	}

	r.logger.Info("reconciliation complete",
		"drops", stats.Drops, "parsed", stats.Parsed, "unparsed", stats.Unparsed,
		"matched_cards", stats.MatchedCards, "catalog_sets", stats.CatalogSets)
	return out, stats, nil
}
