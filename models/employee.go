package models

import (
	"time"

	"gorm.io/gorm"
)

type EmployeeStatus string

const (
	EmployeeStatusPending  EmployeeStatus = "pending"
	EmployeeStatusApproved EmployeeStatus = "approved"
	EmployeeStatusRejected EmployeeStatus = "rejected"
)

// Employee is a service professional. Rating aggregates are recomputed from
// the reviews table on every review write.
type Employee struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"size:255;not null"`
	Area               string         `json:"area" gorm:"size:255;index"`
	Gender             string         `json:"gender,omitempty" gorm:"size:20"`
	Email              string         `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone              string         `json:"phone,omitempty" gorm:"size:32"`
	PasswordHash       string         `json:"-" gorm:"size:255;not null"`
	Bio                string         `json:"bio,omitempty" gorm:"type:text"`
	ProfileImage       string         `json:"profile_image,omitempty" gorm:"size:500"`
	Status             EmployeeStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AvgRate            float64        `json:"avg_rate" gorm:"default:0"`
	AvgPriceRate       float64        `json:"avg_price_rate" gorm:"default:0"`
	AvgPerformanceRate float64        `json:"avg_performance_rate" gorm:"default:0"`
	AvgServiceRate     float64        `json:"avg_service_rate" gorm:"default:0"`
	ReviewCount        int            `json:"review_count" gorm:"default:0"`

	// Approval audit
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Categories []Category `json:"categories,omitempty" gorm:"many2many:employee_categories;"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.Status == "" {
		e.Status = EmployeeStatusPending
	}
	return nil
}

func (e *Employee) IsApproved() bool {
	return e.Status == EmployeeStatusApproved
}

// EmployeeRegister is the payload for professional registration
type EmployeeRegister struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	Phone       string `json:"phone" binding:"omitempty,max=32"`
	Area        string `json:"area" binding:"omitempty,max=255"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	Bio         string `json:"bio"`
	CategoryIDs []uint `json:"category_ids"`
}

type EmployeeUpdate struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,max=32"`
	Area         *string `json:"area" binding:"omitempty,max=255"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image" binding:"omitempty,max=500"`
}

type EmployeeCategoriesUpdate struct {
	CategoryIDs []uint `json:"category_ids" binding:"required"`
}

// EmployeeFilter narrows the public professional listing.
type EmployeeFilter struct {
	CategoryID uint
	Area       string
	Search     string
	Status     EmployeeStatus
}

// EmployeeStats is returned by GET /api/employees/:id/stats.
type EmployeeStats struct {
	EmployeeID         uint    `json:"employee_id"`
	TotalQuotes        int64   `json:"total_quotes"`
	PendingQuotes      int64   `json:"pending_quotes"`
	AcceptedQuotes     int64   `json:"accepted_quotes"`
	ReviewCount        int     `json:"review_count"`
	AvgRate            float64 `json:"avg_rate"`
	AvgPriceRate       float64 `json:"avg_price_rate"`
	AvgPerformanceRate float64 `json:"avg_performance_rate"`
	AvgServiceRate     float64 `json:"avg_service_rate"`
}

// ApprovalDecision is the admin approve/reject payload.
type ApprovalDecision struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}
