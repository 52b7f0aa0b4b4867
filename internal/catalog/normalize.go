package catalog

import (
	"context"

	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	dbtypes "github.com/angelmondragon/atacado-catalog/pkg/db/types"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
)

// FieldReporter logs and counts stored list columns that fail to decode.
// Both fields are optional.
type FieldReporter struct {
	Logger  *logger.Logger
	Metrics *metrics.CatalogMetrics
}

// DecodeListField decodes the JSON list column field of one stored row. A
// malformed value is logged as catalog.malformed_field, counted, and read as
// an empty list.
func DecodeListField[T any](ctx context.Context, r FieldReporter, entity, id, field, raw string) []T {
	items, err := dbtypes.DecodeList[T](raw)
	if err == nil {
		return items
	}
	r.Metrics.IncMalformed(entity, field)
	if r.Logger != nil {
		ctx = r.Logger.WithFields(ctx, map[string]any{"entity": entity, "entity_id": id, "field": field})
		r.Logger.Warn(ctx, "catalog.malformed_field", err)
	}
	return []T{}
}

// normalizer turns stored rows into catalog records. Serialized list fields
// that cannot be decoded become empty lists; the row itself is kept.
type normalizer struct {
	report FieldReporter
}

func (n normalizer) reference(ctx context.Context, row models.Reference) Reference {
	ref := Reference{
		ID:                  row.ID,
		Code:                row.Code,
		Name:                row.Name,
		SizeRange:           row.SizeRange,
		PriceRepresentative: row.PriceRepresentative,
		PriceSacoleira:      row.PriceSacoleira,
		Colors:              decodeField[Color](ctx, n, "reference", row.ID, "colors", row.Colors),
		CreatedAt:           row.CreatedAt,
	}
	if row.CategoryID != nil {
		ref.CategoryID = *row.CategoryID
	}
	return ref
}

func (n normalizer) product(ctx context.Context, row models.Product) Product {
	return Product{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		Fabric:          row.Fabric,
		CategoryIDs:     decodeField[string](ctx, n, "product", row.ID, "category_ids", row.CategoryIDs),
		Images:          decodeField[string](ctx, n, "product", row.ID, "images", row.Images),
		CoverImageIndex: row.CoverImageIndex,
		IsFeatured:      row.IsFeatured,
		ReferenceIDs:    decodeField[string](ctx, n, "product", row.ID, "reference_ids", row.ReferenceIDs),
		CreatedAt:       row.CreatedAt,
	}
}

func (n normalizer) category(row models.Category) Category {
	return Category{ID: row.ID, Name: row.Name, OrderIndex: row.OrderIndex}
}

func decodeField[T any](ctx context.Context, n normalizer, entity, id, field, raw string) []T {
	return DecodeListField[T](ctx, n.report, entity, id, field, raw)
}

// BuildSnapshot normalizes stored rows into a Snapshot.
func BuildSnapshot(ctx context.Context, logg *logger.Logger, m *metrics.CatalogMetrics, refs []models.Reference, products []models.Product, categories []models.Category) *Snapshot {
	n := normalizer{report: FieldReporter{Logger: logg, Metrics: m}}

	outRefs := make([]Reference, 0, len(refs))
	for _, row := range refs {
		outRefs = append(outRefs, n.reference(ctx, row))
	}
	outProducts := make([]Product, 0, len(products))
	for _, row := range products {
		outProducts = append(outProducts, n.product(ctx, row))
	}
	outCategories := make([]Category, 0, len(categories))
	for _, row := range categories {
		outCategories = append(outCategories, n.category(row))
	}
	return NewSnapshot(outRefs, outProducts, outCategories)
}
