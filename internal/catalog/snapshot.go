package catalog

import (
	"sort"
	"time"
)

// Snapshot is an immutable view of every reference, product and category.
// Callers must not modify the slices or maps they read from it.
type Snapshot struct {
	References     []Reference
	ReferencesByID map[string]Reference
	Products       []Product
	ProductsByID   map[string]Product
	Categories     []Category
	CategoriesByID map[string]Category
	LoadedAt       time.Time
}

// NewSnapshot indexes the collections. Categories are ordered by OrderIndex,
// then name.
func NewSnapshot(references []Reference, products []Product, categories []Category) *Snapshot {
	snap := &Snapshot{
		References:     references,
		ReferencesByID: make(map[string]Reference, len(references)),
		Products:       products,
		ProductsByID:   make(map[string]Product, len(products)),
		Categories:     append([]Category(nil), categories...),
		CategoriesByID: make(map[string]Category, len(categories)),
		LoadedAt:       time.Now().UTC(),
	}
	for _, ref := range references {
		snap.ReferencesByID[ref.ID] = ref
	}
	for _, product := range products {
		snap.ProductsByID[product.ID] = product
	}
	sort.SliceStable(snap.Categories, func(i, j int) bool {
		a, b := snap.Categories[i], snap.Categories[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.Name < b.Name
	})
	for _, category := range snap.Categories {
		snap.CategoriesByID[category.ID] = category
	}
	return snap
}

// CategoryNames maps ids to category names, skipping unknown ids.
func (s *Snapshot) CategoryNames(ids []string) []Category {
	out := make([]Category, 0, len(ids))
	for _, id := range ids {
		if category, ok := s.CategoriesByID[id]; ok {
			out = append(out, category)
		}
	}
	return out
}
