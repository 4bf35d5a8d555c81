package models

import (
	"time"

	"github.com/lib/pq"
)

type RecipientType string

const (
	RecipientUser     RecipientType = "user"
	RecipientEmployee RecipientType = "employee"
)

// Delivery channels
const (
	ChannelInApp = "in_app"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Notification types raised by the quote and approval flows.
const (
	NotificationQuoteReceived  = "quote_received"
	NotificationQuoteResponded = "quote_responded"
	NotificationQuoteAccepted  = "quote_accepted"
	NotificationQuoteRejected  = "quote_rejected"
	NotificationQuoteExpired   = "quote_expired"
	NotificationApproval       = "account_approval"
	NotificationComplaint      = "complaint_update"
	NotificationMessage        = "new_message"
	NotificationSystem         = "system"
)

type Notification struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	RecipientType RecipientType  `json:"recipient_type" gorm:"type:varchar(20);not null;index:idx_notification_recipient"`
	RecipientID   uint           `json:"recipient_id" gorm:"not null;index:idx_notification_recipient"`
	Type          string         `json:"type" gorm:"size:50;not null"`
	Title         string         `json:"title" gorm:"size:255;not null"`
	Content       string         `json:"content" gorm:"type:text"`
	Link          string         `json:"link,omitempty" gorm:"size:500"`
	Channels      pq.StringArray `json:"channels" gorm:"type:text"`
	IsRead        bool           `json:"is_read" gorm:"default:false;index"`
	ReadAt        *time.Time     `json:"read_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "notifications"
}

// HasChannel reports whether the notification should go out on channel.
func (n *Notification) HasChannel(channel string) bool {
	for _, c := range n.Channels {
		if c == channel {
			return true
		}
	}
	return false
}

// RecipientTypeFor maps a token role onto an inbox owner type.
func RecipientTypeFor(role UserRole) RecipientType {
	if role == RoleProfessional {
		return RecipientEmployee
	}
	return RecipientUser
}

type NotificationCreate struct {
	RecipientType RecipientType `json:"recipient_type" binding:"omitempty,oneof=user employee"`
	RecipientID   uint          `json:"recipient_id"`
	Type          string        `json:"type" binding:"omitempty,max=50"`
	Title         string        `json:"title" binding:"required,max=255"`
	Content       string        `json:"content"`
	Link          string        `json:"link" binding:"omitempty,max=500"`
	Channels      []string      `json:"channels" binding:"omitempty,dive,oneof=in_app push sms email"`
}
