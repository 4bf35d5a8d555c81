package models

import (
	"time"
)

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintClosed     ComplaintStatus = "closed"
)

var complaintTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintOpen:       {ComplaintInProgress, ComplaintResolved, ComplaintClosed},
	ComplaintInProgress: {ComplaintResolved, ComplaintClosed},
	ComplaintResolved:   {ComplaintClosed},
}

// CanMoveTo reports whether the complaint may progress to next.
func (s ComplaintStatus) CanMoveTo(next ComplaintStatus) bool {
	for _, allowed := range complaintTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Complaint is a user-filed issue, optionally about a professional.
type Complaint struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	User        *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	EmployeeID  *uint           `json:"employee_id,omitempty" gorm:"index"`
	QuoteID     *uint           `json:"quote_id,omitempty"`
	Subject     string          `json:"subject" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Status      ComplaintStatus `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	Resolution  string          `json:"resolution,omitempty" gorm:"type:text"`
	ResolvedBy  *uint           `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Complaint) TableName() string {
	return "complaints"
}

type ComplaintCreate struct {
	EmployeeID  *uint  `json:"employee_id"`
	QuoteID     *uint  `json:"quote_id"`
	Subject     string `json:"subject" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"required,min=5"`
}

type ComplaintUpdate struct {
	Subject     *string `json:"subject" binding:"omitempty,min=3,max=255"`
	Description *string `json:"description" binding:"omitempty,min=5"`
}

type ComplaintStatusUpdate struct {
	Status     ComplaintStatus `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	Resolution string          `json:"resolution"`
}
