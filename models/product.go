package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UncategorizedLabel is the sentinel category name carried by products whose
// category has been deleted.
const UncategorizedLabel = "Uncategorized"

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string     `gorm:"not null;index" json:"title"`
	Description string     `json:"description"`
	Price       float64    `gorm:"not null" json:"price"`
	Stock       int        `gorm:"default:0" json:"stock"`
	Sales       int        `gorm:"default:0" json:"sales"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	// CategoryName is a denormalized label kept in sync by the category
	// workflows so listings survive a category delete.
	CategoryName string         `json:"category_name"`
	ImageURL     string         `json:"image_url"`
	Images       []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
