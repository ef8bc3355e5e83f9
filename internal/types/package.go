package types

import (
	"time"

	"github.com/google/uuid"
)

// Package is a batch of stems of one variety and length assigned to a cart.
// CartID never changes after creation.
type Package struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index" json:"cartId"`
	Variety   string    `gorm:"column:variety;not null" json:"variety"`
	Length    int       `gorm:"column:length;not null" json:"length"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (Package) TableName() string { return "packages" }
