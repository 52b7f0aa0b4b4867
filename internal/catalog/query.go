package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/visibility"
)

// Filter narrows a catalog listing. Both parts must match.
type Filter struct {
	// Category is a category name; empty or CategoryAll keeps everything.
	Category string
	// Text is matched case-insensitively against the product name and each
	// variant's reference code and name.
	Text string
}

// Item is a product prepared for one viewer.
type Item struct {
	Product  Product
	Variants []Variant
	Price    visibility.Display
}

// Query resolves, orders, filters and prices the snapshot for role.
func Query(snapshot *Snapshot, role enums.Role, filter Filter) []Item {
	if snapshot == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(snapshot.Products))
	for _, product := range snapshot.Products {
		items = append(items, Item{
			Product:  product,
			Variants: Resolve(product, snapshot.ReferencesByID),
		})
	}

	SortItems(items)
	items = FilterByCategory(items, snapshot.Categories, filter.Category)
	items = FilterByText(items, filter.Text)

	for i := range items {
		items[i].Price = visibility.RangeDisplay(role, tiersOf(items[i].Variants))
	}
	return items
}

// SortItems orders featured products first, then newest first. Items that
// tie keep their relative order.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Product, items[j].Product
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		return a.CreatedAt > b.CreatedAt
	})
}

// FilterByCategory keeps items linked to a category named exactly name.
// An unknown name yields no items.
func FilterByCategory(items []Item, categories []Category, name string) []Item {
	name = strings.TrimSpace(name)
	if name == "" || name == CategoryAll {
		return items
	}

	ids := make(map[string]struct{})
	for _, category := range categories {
		if category.Name == name {
			ids[category.ID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return []Item{}
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		for _, id := range item.Product.CategoryIDs {
			if _, ok := ids[id]; ok {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// FilterByText keeps items whose name or variants contain text.
func FilterByText(items []Item, text string) []Item {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if matchesText(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matchesText(item Item, needle string) bool {
	if strings.Contains(strings.ToLower(item.Product.Name), needle) {
		return true
	}
	for _, variant := range item.Variants {
		if strings.Contains(strings.ToLower(variant.Reference), needle) ||
			strings.Contains(strings.ToLower(variant.Name), needle) {
			return true
		}
	}
	return false
}

func tiersOf(variants []Variant) []visibility.PriceTiers {
	tiers := make([]visibility.PriceTiers, len(variants))
	for i, variant := range variants {
		tiers[i] = variant.Tiers()
	}
	return tiers
}
