package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
)

// Reference is the canonical priced SKU shared by many products. Colors are
// kept as a JSON array in a text column and decoded on read.
type Reference struct {
	ID                  string          `gorm:"column:id;type:varchar(64);primaryKey"`
	Code                string          `gorm:"column:code;not null"`
	Name                string          `gorm:"column:name;not null;default:''"`
	CategoryID          *string         `gorm:"column:category_id;type:varchar(64)"`
	SizeRange           enums.SizeRange `gorm:"column:size_range;type:varchar(16);not null"`
	PriceRepresentative decimal.Decimal `gorm:"column:price_representative;type:numeric(12,2);not null;default:0"`
	PriceSacoleira      decimal.Decimal `gorm:"column:price_sacoleira;type:numeric(12,2);not null;default:0"`
	Colors              string          `gorm:"column:colors;type:text;not null;default:'[]'"`
	CreatedAt           int64           `gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt           int64           `gorm:"column:updated_at;autoUpdateTime:milli"`
}

func (Reference) TableName() string { return "reference_definitions" }

// BeforeCreate assigns an identifier when the caller did not provide one.
func (r *Reference) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
