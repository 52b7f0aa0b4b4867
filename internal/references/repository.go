package references

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
)

// Repository persists reference definitions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListAll loads every reference for the catalog snapshot.
func (r *Repository) ListAll(ctx context.Context) ([]models.Reference, error) {
	var rows []models.Reference
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns references ordered by code, optionally narrowed by a
// case-insensitive match on code or name.
func (r *Repository) List(ctx context.Context, search string) ([]models.Reference, error) {
	query := r.db.WithContext(ctx).Model(&models.Reference{})
	if needle := strings.ToLower(strings.TrimSpace(search)); needle != "" {
		pattern := "%" + escapeLike(needle) + "%"
		query = query.Where("LOWER(code) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var rows []models.Reference
	if err := query.Order("code ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Reference, error) {
	var row models.Reference
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Reference) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) Update(ctx context.Context, row *models.Reference) error {
	return r.db.WithContext(ctx).
		Model(&models.Reference{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"code":                 row.Code,
			"name":                 row.Name,
			"category_id":          row.CategoryID,
			"size_range":           row.SizeRange,
			"price_representative": row.PriceRepresentative,
			"price_sacoleira":      row.PriceSacoleira,
			"colors":               row.Colors,
		}).Error
}

// Delete removes the reference; gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Reference{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
