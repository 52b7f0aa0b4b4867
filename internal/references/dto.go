package references

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
)

// ReferenceDTO is the admin view of a reference. Both price tiers are shown
// as-is; this shape never leaves the admin surface.
type ReferenceDTO struct {
	ID                  string          `json:"id"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	CategoryID          *string         `json:"category_id,omitempty"`
	SizeRange           enums.SizeRange `json:"size_range"`
	SizeRangeLabel      string          `json:"size_range_label"`
	PriceRepresentative decimal.Decimal `json:"price_representative"`
	PriceSacoleira      decimal.Decimal `json:"price_sacoleira"`
	Colors              []catalog.Color `json:"colors"`
	CreatedAt           int64           `json:"created_at"`
	UpdatedAt           int64           `json:"updated_at"`
}

// FromModel converts a stored row. Colors that fail to decode read as empty
// and are reported through report.
func FromModel(ctx context.Context, report catalog.FieldReporter, r *models.Reference) *ReferenceDTO {
	if r == nil {
		return nil
	}
	return &ReferenceDTO{
		ID:                  r.ID,
		Code:                r.Code,
		Name:                r.Name,
		CategoryID:          r.CategoryID,
		SizeRange:           r.SizeRange,
		SizeRangeLabel:      r.SizeRange.Label(),
		PriceRepresentative: r.PriceRepresentative,
		PriceSacoleira:      r.PriceSacoleira,
		Colors:              catalog.DecodeListField[catalog.Color](ctx, report, "reference", r.ID, "colors", r.Colors),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
