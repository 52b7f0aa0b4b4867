package references

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	dbtypes "github.com/angelmondragon/atacado-catalog/pkg/db/types"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Service exposes reference administration.
type Service interface {
	ListReferences(ctx context.Context, search string) ([]ReferenceDTO, error)
	GetReference(ctx context.Context, id string) (*ReferenceDTO, error)
	CreateReference(ctx context.Context, input CreateReferenceInput) (*ReferenceDTO, error)
	UpdateReference(ctx context.Context, id string, input UpdateReferenceInput) (*ReferenceDTO, error)
	DeleteReference(ctx context.Context, id string) error
}

// CreateReferenceInput holds a new reference definition.
type CreateReferenceInput struct {
	Code                string
	Name                string
	CategoryID          *string
	SizeRange           enums.SizeRange
	PriceRepresentative decimal.Decimal
	PriceSacoleira      decimal.Decimal
	Colors              []catalog.Color
}

// UpdateReferenceInput holds optional changes. A CategoryID pointing at an
// empty string clears the category.
type UpdateReferenceInput struct {
	Code                *string
	Name                *string
	CategoryID          *string
	SizeRange           *enums.SizeRange
	PriceRepresentative *decimal.Decimal
	PriceSacoleira      *decimal.Decimal
	Colors              *[]catalog.Color
}

type categoryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type ServiceParams struct {
	Repo        *Repository
	Categories  categoryFinder
	Invalidator catalog.Invalidator
	Logger      *logger.Logger
	Metrics     *metrics.CatalogMetrics
}

type service struct {
	repo        *Repository
	categories  categoryFinder
	invalidator catalog.Invalidator
	report      catalog.FieldReporter
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reference repository required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if params.Invalidator == nil {
		return nil, fmt.Errorf("catalog invalidator required")
	}
	return &service{
		repo:        params.Repo,
		categories:  params.Categories,
		invalidator: params.Invalidator,
		report:      catalog.FieldReporter{Logger: params.Logger, Metrics: params.Metrics},
	}, nil
}

func (s *service) ListReferences(ctx context.Context, search string) ([]ReferenceDTO, error) {
	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list references")
	}
	out := make([]ReferenceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(ctx, s.report, &rows[i]))
	}
	return out, nil
}

func (s *service) GetReference(ctx context.Context, id string) (*ReferenceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load reference")
	}
	return FromModel(ctx, s.report, row), nil
}

func (s *service) CreateReference(ctx context.Context, input CreateReferenceInput) (*ReferenceDTO, error) {
	row := &models.Reference{
		Code:                strings.TrimSpace(input.Code),
		Name:                strings.TrimSpace(input.Name),
		SizeRange:           input.SizeRange,
		PriceRepresentative: input.PriceRepresentative,
		PriceSacoleira:      input.PriceSacoleira,
	}
	if err := s.applyCategory(ctx, row, input.CategoryID); err != nil {
		return nil, err
	}
	if err := applyColors(row, input.Colors); err != nil {
		return nil, err
	}
	if err := validate(row); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, mapRepoError(err, "create reference")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(ctx, s.report, row), nil
}

func (s *service) UpdateReference(ctx context.Context, id string, input UpdateReferenceInput) (*ReferenceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "load reference")
	}

	if input.Code != nil {
		row.Code = strings.TrimSpace(*input.Code)
	}
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.SizeRange != nil {
		row.SizeRange = *input.SizeRange
	}
	if input.PriceRepresentative != nil {
		row.PriceRepresentative = *input.PriceRepresentative
	}
	if input.PriceSacoleira != nil {
		row.PriceSacoleira = *input.PriceSacoleira
	}
	if input.CategoryID != nil {
		if err := s.applyCategory(ctx, row, input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.Colors != nil {
		if err := applyColors(row, *input.Colors); err != nil {
			return nil, err
		}
	}
	if err := validate(row); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, mapRepoError(err, "update reference")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(ctx, s.report, row), nil
}

// DeleteReference removes the definition. Products that still list its id
// simply stop showing that variant.
func (s *service) DeleteReference(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete reference")
	}
	s.invalidator.Invalidate(ctx)
	return nil
}

func (s *service) applyCategory(ctx context.Context, row *models.Reference, categoryID *string) error {
	if categoryID == nil || strings.TrimSpace(*categoryID) == "" {
		row.CategoryID = nil
		return nil
	}
	id := strings.TrimSpace(*categoryID)
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist").
				WithDetails(map[string]any{"category_id": id})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	row.CategoryID = &id
	return nil
}

func applyColors(row *models.Reference, colors []catalog.Color) error {
	normalized := make([]catalog.Color, 0, len(colors))
	for i, c := range colors {
		name := strings.TrimSpace(c.Name)
		hex := strings.TrimSpace(c.Hex)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "color name is required").
				WithDetails(map[string]any{"index": i})
		}
		if !hexColor.MatchString(hex) {
			return pkgerrors.New(pkgerrors.CodeValidation, "color hex must look like #RGB or #RRGGBB").
				WithDetails(map[string]any{"index": i, "hex": c.Hex})
		}
		normalized = append(normalized, catalog.Color{Name: name, Hex: hex})
	}
	encoded, err := dbtypes.EncodeList(normalized)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode colors")
	}
	row.Colors = encoded
	return nil
}

func validate(row *models.Reference) error {
	if row.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !row.SizeRange.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid size range").
			WithDetails(map[string]any{"size_range": row.SizeRange})
	}
	if row.PriceRepresentative.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_representative must be non-negative")
	}
	if row.PriceSacoleira.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_sacoleira must be non-negative")
	}
	return nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reference not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
