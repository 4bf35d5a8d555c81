package models

import (
	"time"
)

type SenderRole string

const (
	SenderUser     SenderRole = "user"
	SenderEmployee SenderRole = "employee"
	SenderSystem   SenderRole = "system"
)

type ContentType string

const (
	ContentText   ContentType = "text"
	ContentQuote  ContentType = "quote"
	ContentImage  ContentType = "image"
	ContentSystem ContentType = "system"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentText, ContentQuote, ContentImage, ContentSystem:
		return true
	}
	return false
}

// Chat is a conversation between one customer and one professional,
// optionally started from a quote.
type Chat struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"user_id" gorm:"not null;index"`
	User          *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	EmployeeID    uint       `json:"employee_id" gorm:"not null;index"`
	Employee      *Employee  `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	QuoteID       *uint      `json:"quote_id,omitempty" gorm:"index"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Messages      []Message  `json:"messages,omitempty" gorm:"foreignKey:ChatID"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Chat) TableName() string {
	return "chats"
}

// HasParticipant reports whether the principal belongs to the chat.
func (c *Chat) HasParticipant(role UserRole, id uint) bool {
	if role == RoleProfessional {
		return c.EmployeeID == id
	}
	return c.UserID == id
}

type Message struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	ChatID      uint        `json:"chat_id" gorm:"not null;index"`
	SenderRole  SenderRole  `json:"sender_role" gorm:"type:varchar(20);not null"`
	SenderID    uint        `json:"sender_id"`
	ContentType ContentType `json:"content_type" gorm:"type:varchar(20);not null;default:'text'"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	ReadAt      *time.Time  `json:"read_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}

type ChatCreate struct {
	EmployeeID uint  `json:"employee_id" binding:"required"`
	QuoteID    *uint `json:"quote_id"`
}

type MessageCreate struct {
	Content     string      `json:"content" binding:"required,max=5000"`
	ContentType ContentType `json:"content_type"`
}
