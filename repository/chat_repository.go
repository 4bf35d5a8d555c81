package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type ChatRepository struct {
	db *gorm.DB
}

// ListForParticipant returns the chats of a customer or a professional,
// most recently active first.
func (r *ChatRepository) ListForParticipant(ctx context.Context, role models.UserRole, id uint) ([]models.Chat, error) {
	column := "user_id"
	if role == models.RoleProfessional {
		column = "employee_id"
	}

	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Employee").
		Where(column+" = ?", id).
		Order("COALESCE(last_message_at, created_at) DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, id).Error; err != nil {
		return nil, fmt.Errorf("find chat %d: %w", id, err)
	}
	return &chat, nil
}

// FindWithMessages loads the chat and its messages in send order.
func (r *ChatRepository) FindWithMessages(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Employee").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&chat, id).Error
	if err != nil {
		return nil, fmt.Errorf("find chat %d: %w", id, err)
	}
	return &chat, nil
}

// FindExisting looks up the chat for the same customer, professional and quote.
func (r *ChatRepository) FindExisting(ctx context.Context, userID, employeeID uint, quoteID *uint) (*models.Chat, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND employee_id = ?", userID, employeeID)
	if quoteID == nil {
		q = q.Where("quote_id IS NULL")
	} else {
		q = q.Where("quote_id = ?", *quoteID)
	}

	var chat models.Chat
	if err := q.First(&chat).Error; err != nil {
		return nil, fmt.Errorf("find existing chat: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// TouchLastMessage bumps the chat's last activity used for inbox ordering.
func (r *ChatRepository) TouchLastMessage(ctx context.Context, chatID uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", chatID).Update("last_message_at", at).Error
	if err != nil {
		return fmt.Errorf("touch chat %d: %w", chatID, err)
	}
	return nil
}

// MarkRead stamps read_at on the counterpart's unread messages.
func (r *ChatRepository) MarkRead(ctx context.Context, chatID uint, reader models.SenderRole, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND sender_role <> ? AND read_at IS NULL", chatID, reader).
		Update("read_at", at).Error
	if err != nil {
		return fmt.Errorf("mark chat %d read: %w", chatID, err)
	}
	return nil
}
