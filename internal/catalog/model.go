package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/visibility"
)

// CategoryAll is the filter sentinel that keeps every product.
const CategoryAll = "all"

// Color is one named swatch of a reference.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Reference is a decoded reference definition.
type Reference struct {
	ID                  string
	Code                string
	Name                string
	CategoryID          string
	SizeRange           enums.SizeRange
	PriceRepresentative decimal.Decimal
	PriceSacoleira      decimal.Decimal
	Colors              []Color
	CreatedAt           int64
}

// Product is a decoded storefront listing. Variants are never stored on it.
type Product struct {
	ID              string
	Name            string
	Description     string
	Fabric          string
	CategoryIDs     []string
	Images          []string
	CoverImageIndex int
	IsFeatured      bool
	ReferenceIDs    []string
	CreatedAt       int64
}

// Category is a filter chip / badge entry.
type Category struct {
	ID         string
	Name       string
	OrderIndex int
}

// Variant is a reference materialized in the context of one product.
type Variant struct {
	ID                  string
	Name                string
	Reference           string
	SizeRange           enums.SizeRange
	PriceRepresentative decimal.Decimal
	PriceSacoleira      decimal.Decimal
	Colors              []Color
}

// Tiers exposes the variant prices to the access policy.
func (v Variant) Tiers() visibility.PriceTiers {
	return visibility.PriceTiers{
		Representative: v.PriceRepresentative,
		Sacoleira:      v.PriceSacoleira,
	}
}

// CoverIndex returns the index of the cover image, falling back to 0 when
// the stored index is out of range. ok is false when there are no images.
func (p Product) CoverIndex() (index int, ok bool) {
	if len(p.Images) == 0 {
		return 0, false
	}
	if p.CoverImageIndex < 0 || p.CoverImageIndex >= len(p.Images) {
		return 0, true
	}
	return p.CoverImageIndex, true
}

// CoverImage returns the URL of the cover image.
func (p Product) CoverImage() (string, bool) {
	idx, ok := p.CoverIndex()
	if !ok {
		return "", false
	}
	return p.Images[idx], true
}
