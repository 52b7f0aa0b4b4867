package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a storefront listing. It never stores prices; Images,
// ReferenceIDs and CategoryIDs are ordered JSON arrays in text columns. Seq
// records insertion order and breaks createdAt ties.
type Product struct {
	ID              string `gorm:"column:id;type:varchar(64);primaryKey"`
	Name            string `gorm:"column:name;not null"`
	Description     string `gorm:"column:description;type:text;not null;default:''"`
	Fabric          string `gorm:"column:fabric;not null;default:''"`
	CategoryIDs     string `gorm:"column:category_ids;type:text;not null;default:'[]'"`
	Images          string `gorm:"column:images;type:text;not null;default:'[]'"`
	CoverImageIndex int    `gorm:"column:cover_image_index;not null;default:0"`
	IsFeatured      bool   `gorm:"column:is_featured;not null;default:false"`
	ReferenceIDs    string `gorm:"column:reference_ids;type:text;not null;default:'[]'"`
	CreatedAt       int64  `gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt       int64  `gorm:"column:updated_at;autoUpdateTime:milli"`
	Seq             int64  `gorm:"column:seq;not null;default:0;uniqueIndex:idx_products_seq"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
