package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	dbtypes "github.com/angelmondragon/atacado-catalog/pkg/db/types"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
	"github.com/angelmondragon/atacado-catalog/pkg/types"
)

// Service exposes product administration.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*types.Page[ProductDTO], error)
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string, featured bool) (*ProductDTO, error)
}

// ListProductsInput captures the admin grid search and paging.
type ListProductsInput struct {
	Query      string
	Pagination pagination.Params
}

// CreateProductInput holds the payload to create a product. Reference and
// category ids are stored as given, in order.
type CreateProductInput struct {
	Name            string
	Description     string
	Fabric          string
	CategoryIDs     []string
	Images          []string
	CoverImageIndex int
	IsFeatured      bool
	ReferenceIDs    []string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	Fabric          *string
	CategoryIDs     *[]string
	Images          *[]string
	CoverImageIndex *int
	IsFeatured      *bool
	ReferenceIDs    *[]string
}

type ServiceParams struct {
	Repo        *Repository
	Invalidator catalog.Invalidator
	Limits      pagination.Limits
	// Logger and Metrics receive malformed list columns; both are optional.
	Logger  *logger.Logger
	Metrics *metrics.CatalogMetrics
}

type service struct {
	repo        *Repository
	invalidator catalog.Invalidator
	limits      pagination.Limits
	report      catalog.FieldReporter
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Invalidator == nil {
		return nil, fmt.Errorf("catalog invalidator required")
	}
	return &service{
		repo:        params.Repo,
		invalidator: params.Invalidator,
		limits:      params.Limits,
		report:      catalog.FieldReporter{Logger: params.Logger, Metrics: params.Metrics},
	}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*types.Page[ProductDTO], error) {
	offset, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := s.limits.NormalizeLimit(input.Pagination.Limit)

	rows, total, err := s.repo.ListPage(ctx, input.Query, offset, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &types.Page[ProductDTO]{
		Items: make([]ProductDTO, 0, len(rows)),
		Total: int(total),
	}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(ctx, s.report, &rows[i]))
	}
	if next := offset + len(rows); len(rows) == limit && int64(next) < total {
		page.NextCursor = pagination.EncodeCursor(next)
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load product")
	}
	return FromModel(ctx, s.report, row), nil
}

// CreateProduct validates and stores a new product.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	row := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		Fabric:          strings.TrimSpace(input.Fabric),
		CoverImageIndex: input.CoverImageIndex,
		IsFeatured:      input.IsFeatured,
	}
	images := cleanList(input.Images)
	if err := encodeLists(row, cleanList(input.CategoryIDs), images, cleanList(input.ReferenceIDs)); err != nil {
		return nil, err
	}
	if err := validate(row, len(images)); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, mapRepoError(err, "create product")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(ctx, s.report, row), nil
}

// UpdateProduct applies the non-nil fields of input.
func (s *service) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load product")
	}
	current := FromModel(ctx, s.report, row)

	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		row.Description = strings.TrimSpace(*input.Description)
	}
	if input.Fabric != nil {
		row.Fabric = strings.TrimSpace(*input.Fabric)
	}
	if input.CoverImageIndex != nil {
		row.CoverImageIndex = *input.CoverImageIndex
	}
	if input.IsFeatured != nil {
		row.IsFeatured = *input.IsFeatured
	}

	categoryIDs, images, referenceIDs := current.CategoryIDs, current.Images, current.ReferenceIDs
	if input.CategoryIDs != nil {
		categoryIDs = cleanList(*input.CategoryIDs)
	}
	if input.Images != nil {
		images = cleanList(*input.Images)
	}
	if input.ReferenceIDs != nil {
		referenceIDs = cleanList(*input.ReferenceIDs)
	}
	if err := encodeLists(row, categoryIDs, images, referenceIDs); err != nil {
		return nil, err
	}
	if err := validate(row, len(images)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, mapRepoError(err, "update product")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(ctx, s.report, row), nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete product")
	}
	s.invalidator.Invalidate(ctx)
	return nil
}

// SetFeatured toggles the featured flag from the admin grid.
func (s *service) SetFeatured(ctx context.Context, id string, featured bool) (*ProductDTO, error) {
	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		return nil, mapRepoError(err, "set featured")
	}
	s.invalidator.Invalidate(ctx)
	return s.GetProduct(ctx, id)
}

func encodeLists(row *models.Product, categoryIDs, images, referenceIDs []string) error {
	var err error
	if row.CategoryIDs, err = dbtypes.EncodeList(categoryIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode category ids")
	}
	if row.Images, err = dbtypes.EncodeList(images); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode images")
	}
	if row.ReferenceIDs, err = dbtypes.EncodeList(referenceIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode reference ids")
	}
	return nil
}

func validate(row *models.Product, imageCount int) error {
	if row.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if imageCount == 0 {
		row.CoverImageIndex = 0
		return nil
	}
	if row.CoverImageIndex < 0 || row.CoverImageIndex >= imageCount {
		return pkgerrors.New(pkgerrors.CodeValidation, "cover_image_index out of range").
			WithDetails(map[string]any{"cover_image_index": row.CoverImageIndex, "images": imageCount})
	}
	return nil
}

// cleanList trims entries and drops blanks. Order and duplicates are kept.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
