package types

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a warehouse user allowed to drive carts through the API.
type Operator struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (Operator) TableName() string { return "operators" }
