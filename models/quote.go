package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusResponded QuoteStatus = "responded"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
)

type QuoteUrgency string

const (
	UrgencyLow    QuoteUrgency = "low"
	UrgencyMedium QuoteUrgency = "medium"
	UrgencyHigh   QuoteUrgency = "high"
	UrgencyUrgent QuoteUrgency = "urgent"
)

type ResponseMethod string

const (
	ResponseMethodPhone ResponseMethod = "phone"
	ResponseMethodEmail ResponseMethod = "email"
	ResponseMethodChat  ResponseMethod = "chat"
)

// quoteTransitions lists the allowed status moves.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPending:   {QuoteStatusResponded},
	QuoteStatusResponded: {QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired},
}

// CanTransition reports whether a quote may move from one status to another.
func CanTransition(from, to QuoteStatus) bool {
	for _, next := range quoteTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (u QuoteUrgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

func (m ResponseMethod) Valid() bool {
	switch m {
	case ResponseMethodPhone, ResponseMethodEmail, ResponseMethodChat:
		return true
	}
	return false
}

// QuoteAnswer is one question/answer pair from the request form.
type QuoteAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Quote is a service request from a customer or guest to one professional.
type Quote struct {
	ID             uint                             `json:"id" gorm:"primaryKey"`
	CustomerID     *uint                            `json:"customer_id,omitempty" gorm:"index"`
	Customer       *User                            `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	GuestName      string                           `json:"guest_name,omitempty" gorm:"size:255"`
	GuestEmail     string                           `json:"guest_email,omitempty" gorm:"size:255"`
	GuestPhone     string                           `json:"guest_phone,omitempty" gorm:"size:32"`
	EmployeeID     uint                             `json:"employee_id" gorm:"not null;index"`
	Employee       *Employee                        `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	CategoryID     uint                             `json:"category_id" gorm:"not null;index"`
	Category       *Category                        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Answers        datatypes.JSONSlice[QuoteAnswer] `json:"answers"`
	Urgency        QuoteUrgency                     `json:"urgency" gorm:"type:varchar(20);not null"`
	ResponseMethod ResponseMethod                   `json:"response_method" gorm:"type:varchar(20);not null"`
	Description    string                           `json:"description,omitempty" gorm:"type:text"`
	Status         QuoteStatus                      `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RespondedAt    *time.Time                       `json:"responded_at,omitempty"`
	DecidedAt      *time.Time                       `json:"decided_at,omitempty"`
	Response       *QuoteResponse                   `json:"response,omitempty" gorm:"foreignKey:QuoteID"`
	CreatedAt      time.Time                        `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time                        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Quote) TableName() string {
	return "quotes"
}

// IsGuest reports whether the quote was submitted without an account.
func (q *Quote) IsGuest() bool {
	return q.CustomerID == nil
}

// QuoteResponse is the professional's priced offer, one per quote.
type QuoteResponse struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuoteID      uint      `json:"quote_id" gorm:"not null;uniqueIndex"`
	EmployeeID   uint      `json:"employee_id" gorm:"not null;index"`
	Price        float64   `json:"price" gorm:"not null"`
	Availability string    `json:"availability" gorm:"type:text;not null"`
	Notes        string    `json:"notes,omitempty" gorm:"type:text"`
	ValidUntil   time.Time `json:"valid_until" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (QuoteResponse) TableName() string {
	return "quote_responses"
}

// QuoteCreate is the POST /api/quotes payload. Guest fields are required
// only when the caller is anonymous.
type QuoteCreate struct {
	ProfessionalID uint           `json:"professional_id"`
	CategoryID     uint           `json:"category_id"`
	Answers        []QuoteAnswer  `json:"answers"`
	Urgency        QuoteUrgency   `json:"urgency"`
	ResponseMethod ResponseMethod `json:"response_method"`
	Description    string         `json:"description"`
	GuestName      string         `json:"guest_name"`
	GuestEmail     string         `json:"guest_email"`
	GuestPhone     string         `json:"guest_phone"`
}

type QuoteRespond struct {
	Price        float64    `json:"price"`
	Availability string     `json:"availability"`
	Notes        string     `json:"notes"`
	ValidUntil   *time.Time `json:"valid_until"`
}
