package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
	"github.com/angelmondragon/atacado-catalog/pkg/types"
	"github.com/angelmondragon/atacado-catalog/pkg/visibility"
)

// Service exposes the storefront read path.
type Service interface {
	ListCatalog(ctx context.Context, role enums.Role, input ListInput) (*types.Page[ItemDTO], error)
	GetProduct(ctx context.Context, role enums.Role, productID string) (*ProductDetailDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

// ListInput carries the listing filter and page.
type ListInput struct {
	Filter Filter
	Page   pagination.Params
}

type snapshotSource interface {
	Get(ctx context.Context) (*Snapshot, error)
}

// ServiceParams wires the catalog service. Metrics is optional.
type ServiceParams struct {
	Snapshots snapshotSource
	Limits    pagination.Limits
	Metrics   *metrics.CatalogMetrics
}

type service struct {
	snapshots snapshotSource
	limits    pagination.Limits
	metrics   *metrics.CatalogMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Snapshots == nil {
		return nil, errors.New("snapshot source required")
	}
	return &service{
		snapshots: params.Snapshots,
		limits:    params.Limits,
		metrics:   params.Metrics,
	}, nil
}

func (s *service) ListCatalog(ctx context.Context, role enums.Role, input ListInput) (*types.Page[ItemDTO], error) {
	s.metrics.IncQuery(role.String())

	offset, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}

	items := Query(snap, role, input.Filter)
	start, end, next := pagination.Window(len(items), offset, s.limits.NormalizeLimit(input.Page.Limit))

	page := &types.Page[ItemDTO]{
		Items:      make([]ItemDTO, 0, end-start),
		NextCursor: next,
		Total:      len(items),
	}
	for _, item := range items[start:end] {
		page.Items = append(page.Items, newItemDTO(item, snap))
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, role enums.Role, productID string) (*ProductDetailDTO, error) {
	s.metrics.IncQuery(role.String())

	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	product, ok := snap.ProductsByID[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	variants := Resolve(product, snap.ReferencesByID)
	item := Item{
		Product:  product,
		Variants: variants,
		Price:    visibility.RangeDisplay(role, tiersOf(variants)),
	}
	detail := newProductDetailDTO(item, snap, role)
	return &detail, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		out = append(out, newCategoryDTO(c))
	}
	return out, nil
}
