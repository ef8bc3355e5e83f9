package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Cart accumulates stem packages up to MaxPackages, then seals itself.
// TotalPackages and IsCompleted are derived from the package set and
// recomputed by the cart service on every package mutation.
type Cart struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CartNumber    int            `gorm:"column:cart_number;not null" json:"cartNumber"`
	Destination   string         `gorm:"column:destination;not null" json:"destination"`
	Tag           string         `gorm:"column:tag;not null" json:"tag"`
	BucketType    string         `gorm:"column:bucket_type;not null" json:"bucketType"`
	TotalPackages int            `gorm:"column:total_packages;not null;default:0" json:"totalPackages"`
	MaxPackages   int            `gorm:"column:max_packages;not null;default:72" json:"maxPackages"`
	IsCompleted   bool           `gorm:"column:is_completed;not null;default:false" json:"isCompleted"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"createdAt"`
	CompletedAt   *time.Time     `gorm:"column:completed_at" json:"completedAt"`

	Packages []Package `gorm:"foreignKey:CartID;references:ID;constraint:OnDelete:CASCADE" json:"packages"`
}

func (Cart) TableName() string { return "carts" }

// Remaining reports the headroom before the cart seals. Never negative:
// an overflowing total is accepted by the server, headroom just bottoms out.
func (c *Cart) Remaining() int {
	r := c.MaxPackages - c.TotalPackages
	if r < 0 {
		return 0
	}
	return r
}
