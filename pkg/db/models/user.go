package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-catalog/pkg/enums"
)

// User represents a back-office or buyer account.
type User struct {
	ID           string     `gorm:"column:id;type:varchar(64);primaryKey"`
	Username     string     `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;type:varchar(32);not null"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    int64      `gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt    int64      `gorm:"column:updated_at;autoUpdateTime:milli"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{&Category{}, &Reference{}, &Product{}, &User{}}
}
