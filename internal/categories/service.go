package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/pkg/db"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
)

// Service manages the category lookup table.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, orderedIDs []string) ([]CategoryDTO, error)
}

// CreateCategoryInput holds a new category. OrderIndex defaults to the end of the list.
type CreateCategoryInput struct {
	Name       string
	OrderIndex *int
}

// UpdateCategoryInput holds optional changes.
type UpdateCategoryInput struct {
	Name       *string
	OrderIndex *int
}

type ServiceParams struct {
	Repo        *Repository
	DB          *db.Client
	Invalidator catalog.Invalidator
}

type service struct {
	repo        *Repository
	db          *db.Client
	invalidator catalog.Invalidator
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Invalidator == nil {
		return nil, fmt.Errorf("catalog invalidator required")
	}
	return &service{repo: params.Repo, db: params.DB, invalidator: params.Invalidator}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return fromModels(rows), nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	row := &models.Category{Name: name}
	if input.OrderIndex != nil {
		if *input.OrderIndex < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_index must be non-negative")
		}
		row.OrderIndex = *input.OrderIndex
	} else {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count categories")
		}
		row.OrderIndex = int(count)
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, mapWriteError(err, "create category")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(row), nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapWriteError(err, "load category")
	}

	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		row.Name = name
	}
	if input.OrderIndex != nil {
		if *input.OrderIndex < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_index must be non-negative")
		}
		row.OrderIndex = *input.OrderIndex
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, mapWriteError(err, "update category")
	}
	s.invalidator.Invalidate(ctx)
	return FromModel(row), nil
}

// DeleteCategory removes the row. Products and references that still point
// at it keep the dangling id; readers skip unknown ids.
func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapWriteError(err, "delete category")
	}
	s.invalidator.Invalidate(ctx)
	return nil
}

// ReorderCategories assigns order indexes following orderedIDs. Categories
// left out keep their relative order after the listed ones.
func (s *service) ReorderCategories(ctx context.Context, orderedIDs []string) ([]CategoryDTO, error) {
	if len(orderedIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids are required")
	}

	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	known := make(map[string]bool, len(rows))
	for _, row := range rows {
		known[row.ID] = true
	}

	var problems error
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		switch {
		case !known[id]:
			problems = multierr.Append(problems, fmt.Errorf("unknown category %q", id))
		case seen[id]:
			problems = multierr.Append(problems, fmt.Errorf("category %q listed twice", id))
		}
		seen[id] = true
	}
	if problems != nil {
		details := make([]string, 0)
		for _, e := range multierr.Errors(problems) {
			details = append(details, e.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category order").WithDetails(details)
	}

	order := append([]string(nil), orderedIDs...)
	for _, row := range rows {
		if !seen[row.ID] {
			order = append(order, row.ID)
		}
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for idx, id := range order {
			if err := txRepo.SetOrder(ctx, id, idx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder categories")
	}
	s.invalidator.Invalidate(ctx)
	return s.ListCategories(ctx)
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.EqualFold(name, catalog.CategoryAll) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is reserved", catalog.CategoryAll))
	}
	return name, nil
}

func mapWriteError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
