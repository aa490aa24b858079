package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingCost is a flat delivery rate for one governorate. Orders snapshot
// the cost at checkout time, so editing a row never rewrites past orders.
type ShippingCost struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Governorate   string         `gorm:"uniqueIndex;not null" json:"governorate"`
	GovernorateAr string         `json:"governorate_ar"`
	Cost          float64        `gorm:"not null" json:"cost"`
	DeliveryDays  int            `gorm:"default:3" json:"delivery_days"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *ShippingCost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
