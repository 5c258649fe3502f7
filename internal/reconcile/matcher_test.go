package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codyseavey/sld-tracker/internal/models"
)

func testCatalog() []models.CatalogEntry {
	return []models.CatalogEntry{
		{ID: "a", Name: "Bitterblossom", Set: "sld", CollectorNumber: "123a"},
		{ID: "b", Name: "Lightning Bolt", Set: "eld", CollectorNumber: "123"},
		{ID: "c", Name: "Counterspell", Set: "sld", CollectorNumber: "125"},
		{ID: "d", Name: "Plains", Set: "sld", CollectorNumber: "★"},
		{ID: "e", Name: "Sol Ring", Set: "SLD", CollectorNumber: "7"},
		{ID: "f", Name: "Brainstorm", Set: "sld", CollectorNumber: "124"},
	}
}

func ids(entries []*models.CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestCollectorNumberValue(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"123", 123, true},
		{"123a", 123, true},
		{"007", 7, true},
		{"★45", 45, true},
		{"A-12b3", 12, true},
		{"", 0, false},
		{"★", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CollectorNumberValue(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CollectorNumberValue(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCatalogIndexLookup(t *testing.T) {
	idx := BuildCatalogIndex(testCatalog())

	if idx.Len() != 6 {
		t.Errorf("Len() = %d, want 6", idx.Len())
	}
	if idx.SetCount() != 2 {
		t.Errorf("SetCount() = %d, want 2", idx.SetCount())
	}
	if diff := cmp.Diff([]string{"a", "c", "d", "e", "f"}, ids(idx.Lookup("SLD"))); diff != "" {
		t.Errorf("Lookup(SLD) mismatch (-want +got):\n%s", diff)
	}
	if got := idx.Lookup("zzz"); len(got) != 0 {
		t.Errorf("expected no entries for unknown set, got %d", len(got))
	}

	var nilIdx *CatalogIndex
	if nilIdx.Lookup("sld") != nil || nilIdx.Len() != 0 || nilIdx.SetCount() != 0 {
		t.Error("nil index should behave as empty")
	}
}

func TestMatch(t *testing.T) {
	idx := BuildCatalogIndex(testCatalog())
	m := NewMatcher()

	tests := []struct {
		name string
		r    *CardRange
		want []string
	}{
		{"suffix ignored", &CardRange{SetCode: "SLD", Numbers: []int{123}}, []string{"a"}},
		{"catalog order kept", &CardRange{SetCode: "SLD", Numbers: []int{7, 123, 124, 125}}, []string{"a", "c", "e", "f"}},
		{"set is case insensitive", &CardRange{SetCode: "sld", Numbers: []int{7}}, []string{"e"}},
		{"other set never matches", &CardRange{SetCode: "ELD", Numbers: []int{123, 125}}, []string{"b"}},
		{"no entries for set", &CardRange{SetCode: "PLST", Numbers: []int{1}}, []string{}},
		{"no number matches", &CardRange{SetCode: "SLD", Numbers: []int{999}}, []string{}},
		{"nil range", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.r, idx)
			if got == nil {
				t.Fatal("Match returned nil, want empty slice")
			}
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("Match mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchEmptyIndex(t *testing.T) {
	m := NewMatcher()
	r := &CardRange{SetCode: "SLD", Numbers: []int{1}}

	if got := m.Match(r, BuildCatalogIndex(nil)); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for empty catalog, got %v", got)
	}
	if got := m.Match(r, nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for nil index, got %v", got)
	}
}
