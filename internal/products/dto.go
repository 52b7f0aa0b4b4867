package product

import (
	"context"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
)

// ProductDTO is the admin view of a product row. Prices live on references
// and never appear here.
type ProductDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Fabric          string   `json:"fabric"`
	CategoryIDs     []string `json:"category_ids"`
	Images          []string `json:"images"`
	CoverImageIndex int      `json:"cover_image_index"`
	IsFeatured      bool     `json:"is_featured"`
	ReferenceIDs    []string `json:"reference_ids"`
	CreatedAt       int64    `json:"created_at"`
	UpdatedAt       int64    `json:"updated_at"`
}

// FromModel converts a stored row. List columns that fail to decode read as
// empty and are reported through report.
func FromModel(ctx context.Context, report catalog.FieldReporter, p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Fabric:          p.Fabric,
		CategoryIDs:     catalog.DecodeListField[string](ctx, report, "product", p.ID, "category_ids", p.CategoryIDs),
		Images:          catalog.DecodeListField[string](ctx, report, "product", p.ID, "images", p.Images),
		CoverImageIndex: p.CoverImageIndex,
		IsFeatured:      p.IsFeatured,
		ReferenceIDs:    catalog.DecodeListField[string](ctx, report, "product", p.ID, "reference_ids", p.ReferenceIDs),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
