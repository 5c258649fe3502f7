package reconcile

import (
	"strings"

	"github.com/codyseavey/sld-tracker/internal/models"
)

// CatalogIndex groups catalog entries by lowercase set code so each drop only
// scans the cards of its own set. Entries point into the slice passed to
// BuildCatalogIndex, which must not be modified while the index is in use.
type CatalogIndex struct {
	bySet map[string][]*models.CatalogEntry
	size  int
}

// BuildCatalogIndex makes the single pass over the full catalog.
func BuildCatalogIndex(catalog []models.CatalogEntry) *CatalogIndex {
	idx := &CatalogIndex{
		bySet: make(map[string][]*models.CatalogEntry),
		size:  len(catalog),
	}
	for i := range catalog {
		set := strings.ToLower(catalog[i].Set)
		idx.bySet[set] = append(idx.bySet[set], &catalog[i])
	}
	return idx
}

// Lookup returns the entries of one set in catalog order. The set code is
// lowercased before lookup.
func (idx *CatalogIndex) Lookup(setCode string) []*models.CatalogEntry {
	if idx == nil {
		return nil
	}
	return idx.bySet[strings.ToLower(setCode)]
}

// Len is the number of catalog entries indexed.
func (idx *CatalogIndex) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// SetCount is the number of distinct sets seen.
func (idx *CatalogIndex) SetCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.bySet)
}
