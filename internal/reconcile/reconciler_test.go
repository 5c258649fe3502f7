package reconcile

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codyseavey/sld-tracker/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestReconcile(t *testing.T) {
	catalog := []models.CatalogEntry{
		{
			ID: "card-1", Name: "Bitterblossom", Set: "sld", CollectorNumber: "123a",
			ImageURIs: &models.ImageURIs{Normal: "https://img/1.jpg"},
			Prices:    models.CatalogPrices{USD: strPtr("12.30"), EUR: strPtr("10.00")},
		},
		{
			ID: "card-2", Set: "sld", CollectorNumber: "124",
			CardFaces: []models.CardFace{{ImageURIs: &models.ImageURIs{Normal: "https://img/2-front.jpg"}}},
		},
		{ID: "card-3", Name: "Lightning Bolt", Set: "eld", CollectorNumber: "123"},
	}
	drops := []models.RawDrop{
		{DropNumber: "1", Name: "Bitterblossom", CardNumbers: "SLD-123 - SLD-124"},
		{DropNumber: "", Name: "Mystery", CardNumbers: "TBA"},
		{DropNumber: "3", Name: "Elsewhere", CardNumbers: "PLST-5"},
	}

	r := NewReconciler(NewRangeParser(DefaultSetCode), NewMatcher())
	got, stats, err := r.Reconcile(drops, catalog)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if len(got) != len(drops) {
		t.Fatalf("expected %d drops, got %d", len(drops), len(got))
	}

	for i := range drops {
		if diff := cmp.Diff(drops[i], got[i].RawDrop); diff != "" {
			t.Errorf("drop %d changed (-want +got):\n%s", i, diff)
		}
	}

	want := []models.MatchedCard{
		{
			Name: "Bitterblossom", CollectorNumber: "123a", Set: "sld", ID: "card-1",
			ImageURI: "https://img/1.jpg",
			Prices:   models.MatchedPrice{USD: strPtr("12.30"), EUR: strPtr("10.00")},
		},
		{
			Name: "Unknown", CollectorNumber: "124", Set: "sld", ID: "card-2",
			ImageURI: "https://img/2-front.jpg",
		},
	}
	if diff := cmp.Diff(want, got[0].Cards); diff != "" {
		t.Errorf("matched cards mismatch (-want +got):\n%s", diff)
	}

	if got[1].Parsed() || got[1].Cards != nil {
		t.Errorf("unparsed drop should have no card list, got %+v", got[1].Cards)
	}
	if !got[2].Parsed() || got[2].Cards == nil || len(got[2].Cards) != 0 {
		t.Errorf("drop for a set without catalog entries should have an empty card list, got %+v", got[2].Cards)
	}

	wantStats := Stats{Drops: 3, Parsed: 2, Unparsed: 1, WithCards: 1, MatchedCards: 2, CatalogSize: 3, CatalogSets: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileNilCatalog(t *testing.T) {
	r := NewReconciler(nil, nil)

	_, _, err := r.Reconcile([]models.RawDrop{{Name: "x", CardNumbers: "1"}}, nil)
	if !errors.Is(err, ErrNilCatalog) {
		t.Errorf("expected ErrNilCatalog, got %v", err)
	}

	_, _, err = r.ReconcileIndex(nil, nil)
	if !errors.Is(err, ErrNilCatalog) {
		t.Errorf("expected ErrNilCatalog from ReconcileIndex, got %v", err)
	}
}

func TestReconcileEmptyCatalog(t *testing.T) {
	r := NewReconciler(nil, nil)
	drops := []models.RawDrop{
		{DropNumber: "1", CardNumbers: "SLD-1"},
		{DropNumber: "2", CardNumbers: "nope"},
	}

	got, stats, err := r.Reconcile(drops, []models.CatalogEntry{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 drops, got %d", len(got))
	}
	if got[0].Cards == nil || len(got[0].Cards) != 0 {
		t.Errorf("expected empty card list, got %v", got[0].Cards)
	}
	if stats.MatchedCards != 0 || stats.Parsed != 1 || stats.Unparsed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReconcileNoDrops(t *testing.T) {
	r := NewReconciler(nil, nil)
	got, stats, err := r.Reconcile(nil, []models.CatalogEntry{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || stats.Drops != 0 {
		t.Errorf("expected no output, got %d drops and %+v", len(got), stats)
	}
}

func TestReconciledJSON(t *testing.T) {
	r := NewReconciler(nil, nil)
	drops := []models.RawDrop{
		{DropNumber: "1", Name: "Parsed", CardNumbers: "SLD-1"},
		{DropNumber: "2", Name: "Unparsed", CardNumbers: "?"},
	}
	got, _, err := r.Reconcile(drops, []models.CatalogEntry{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"drop_number":"1","name":"Parsed","card_numbers":"SLD-1","cards":[]`) {
		t.Errorf("parsed drop should carry an empty cards list: %s", out)
	}
	if strings.Count(out, `"cards"`) != 1 {
		t.Errorf("unparsed drop should omit cards: %s", out)
	}
}
