package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultCategoryID is used for quotes submitted without a category.
const DefaultCategoryID uint = 1

type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Image       string         `json:"image,omitempty" gorm:"size:500"`
	Parent      string         `json:"parent,omitempty" gorm:"size:255"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

type CategoryCreate struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"omitempty,max=500"`
	Parent      string `json:"parent" binding:"omitempty,max=255"`
}

// CategoryWithCount is the admin listing row.
type CategoryWithCount struct {
	Category
	ProfessionalCount int64 `json:"professional_count"`
}
