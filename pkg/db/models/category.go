package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a lookup row ordered by OrderIndex for display and filter chips.
type Category struct {
	ID         string `gorm:"column:id;type:varchar(64);primaryKey"`
	Name       string `gorm:"column:name;not null;uniqueIndex"`
	OrderIndex int    `gorm:"column:order_index;not null;default:0"`
	CreatedAt  int64  `gorm:"column:created_at;autoCreateTime:milli"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
