package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"marketplace-server/models"
	"marketplace-server/repository"
)

type ChatService struct {
	store  *repository.Store
	pusher Pusher
	images ImageStore
}

func NewChatService(store *repository.Store, pusher Pusher, images ImageStore) *ChatService {
	return &ChatService{store: store, pusher: pusher, images: images}
}

func senderRoleFor(p Principal) models.SenderRole {
	if p.IsProfessional() {
		return models.SenderEmployee
	}
	return models.SenderUser
}

func (s *ChatService) List(ctx context.Context, p Principal) ([]models.Chat, error) {
	return s.store.Chats.ListForParticipant(ctx, p.Role, p.ID)
}

// Create opens a chat between the calling customer and a professional. An
// existing chat for the same pair and quote is returned instead of a new one.
func (s *ChatService) Create(ctx context.Context, p Principal, input models.ChatCreate) (*models.Chat, bool, error) {
	if !p.IsCustomer() {
		return nil, false, ErrForbidden("Only customers can start a chat")
	}
	if _, err := s.store.Employees.FindByID(ctx, input.EmployeeID); err != nil {
		return nil, false, notFoundOr(err, "professional")
	}
	if input.QuoteID != nil {
		quote, err := s.store.Quotes.FindByID(ctx, *input.QuoteID)
		if err != nil {
			return nil, false, notFoundOr(err, "quote")
		}
		if quote.EmployeeID != input.EmployeeID || quote.CustomerID == nil || *quote.CustomerID != p.ID {
			return nil, false, ErrForbidden("The quote does not belong to this conversation")
		}
	}

	existing, err := s.store.Chats.FindExisting(ctx, p.ID, input.EmployeeID, input.QuoteID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat := &models.Chat{UserID: p.ID, EmployeeID: input.EmployeeID, QuoteID: input.QuoteID}
	if err := s.store.Chats.Create(ctx, chat); err != nil {
		return nil, false, err
	}
	log.Printf("✅ Chat %d opened between user %d and employee %d", chat.ID, p.ID, input.EmployeeID)
	return chat, true, nil
}

// Get returns the chat with its messages and marks the counterpart's
// messages as read.
func (s *ChatService) Get(ctx context.Context, p Principal, id uint) (*models.Chat, error) {
	chat, err := s.participantChat(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Chats.MarkRead(ctx, chat.ID, senderRoleFor(p), time.Now()); err != nil {
		log.Printf("⚠️ Failed to mark chat %d read: %v", chat.ID, err)
	}

	chat, err = s.store.Chats.FindWithMessages(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "chat")
	}
	return chat, nil
}

func (s *ChatService) participantChat(ctx context.Context, p Principal, id uint) (*models.Chat, error) {
	chat, err := s.store.Chats.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "chat")
	}
	if !chat.HasParticipant(p.Role, p.ID) {
		return nil, ErrForbidden("You are not a participant in this chat")
	}
	return chat, nil
}

// SendMessage appends a message and pushes it to the other participant.
func (s *ChatService) SendMessage(ctx context.Context, p Principal, chatID uint, input models.MessageCreate) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrValidation("content is required")
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = models.ContentText
	}
	if !contentType.Valid() || contentType == models.ContentSystem {
		return nil, ErrValidation("content_type must be one of text, quote, image")
	}

	chat, err := s.participantChat(ctx, p, chatID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, chat, p, contentType, content)
}

// SendImage uploads an image and posts its URL as an image message.
func (s *ChatService) SendImage(ctx context.Context, p Principal, chatID uint, file io.Reader, filename string) (*models.Message, error) {
	chat, err := s.participantChat(ctx, p, chatID)
	if err != nil {
		return nil, err
	}
	if !AllowedImageExt(filename) {
		return nil, ErrValidation("Unsupported image type")
	}

	url, err := s.images.Upload(ctx, file, filename, fmt.Sprintf("chats/%d", chat.ID))
	if err != nil {
		return nil, err
	}
	return s.post(ctx, chat, p, models.ContentImage, url)
}

func (s *ChatService) post(ctx context.Context, chat *models.Chat, p Principal, contentType models.ContentType, content string) (*models.Message, error) {
	message := &models.Message{
		ChatID:      chat.ID,
		SenderRole:  senderRoleFor(p),
		SenderID:    p.ID,
		ContentType: contentType,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Chats.CreateMessage(ctx, message); err != nil {
			return err
		}
		return tx.Chats.TouchLastMessage(ctx, chat.ID, message.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	if s.pusher != nil {
		key := RecipientKey(models.RecipientEmployee, chat.EmployeeID)
		if message.SenderRole == models.SenderEmployee {
			key = RecipientKey(models.RecipientUser, chat.UserID)
		}
		s.pusher.Push(key, "chat_message", message)
	}
	return message, nil
}
