package product

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/pkg/db"
	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
)

const maxSeqAttempts = 3

// Repository persists storefront products.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListAll loads every product in insertion order for the catalog snapshot,
// which sorts them itself.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Order("seq ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPage returns one page of products for the admin grid together with the
// total number of matches, in the storefront order.
func (r *Repository) ListPage(ctx context.Context, search string, offset, limit int) ([]models.Product, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Product{})
		if needle := strings.ToLower(strings.TrimSpace(search)); needle != "" {
			query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(needle)+"%")
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	if err := scoped().
		Order("is_featured DESC").
		Order("created_at DESC").
		Order("seq ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts row with the next insertion sequence number. Two creates
// racing for the same number retry with a fresh one.
func (r *Repository) Create(ctx context.Context, row *models.Product) error {
	var err error
	for attempt := 0; attempt < maxSeqAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&models.Product{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
				return err
			}
			row.Seq = last + 1
			return tx.Create(row).Error
		})
		if err == nil || !db.IsUniqueViolation(err, "seq") {
			return err
		}
	}
	return err
}

func (r *Repository) Update(ctx context.Context, row *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"name":              row.Name,
			"description":       row.Description,
			"fabric":            row.Fabric,
			"category_ids":      row.CategoryIDs,
			"images":            row.Images,
			"cover_image_index": row.CoverImageIndex,
			"is_featured":       row.IsFeatured,
			"reference_ids":     row.ReferenceIDs,
		}).Error
}

// SetFeatured flips the featured flag; gorm.ErrRecordNotFound when the row is missing.
func (r *Repository) SetFeatured(ctx context.Context, id string, featured bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_featured", featured)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
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
