package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"marketplace-server/models"
	"marketplace-server/repository"
)

// Pusher delivers a realtime event to a connected recipient. It reports
// false when the recipient has no live connection.
type Pusher interface {
	Push(key string, event string, data interface{}) bool
}

// Notifier stores a notification and fans it out over its channels.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	store  *repository.Store
	pusher Pusher
	sms    SMSSender
}

// NewNotificationService wires the dispatcher. pusher and sms may be nil, in
// which case those channels are skipped.
func NewNotificationService(store *repository.Store, pusher Pusher, sms SMSSender) *NotificationService {
	return &NotificationService{store: store, pusher: pusher, sms: sms}
}

// RecipientKey addresses a recipient on the realtime hub.
func RecipientKey(t models.RecipientType, id uint) string {
	return fmt.Sprintf("%s:%d", t, id)
}

// Notify persists n (the in_app channel is implied) and then delivers it
// on the remaining channels. Delivery failures are logged, not returned.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if len(n.Channels) == 0 {
		n.Channels = []string{models.ChannelInApp}
	}
	if !n.HasChannel(models.ChannelInApp) {
		n.Channels = append([]string{models.ChannelInApp}, n.Channels...)
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}

	if err := s.store.Notifications.Create(ctx, n); err != nil {
		return err
	}

	s.dispatch(ctx, n)
	return nil
}

func (s *NotificationService) dispatch(ctx context.Context, n *models.Notification) {
	for _, channel := range n.Channels {
		switch channel {
		case models.ChannelInApp:
		case models.ChannelPush:
			if s.pusher == nil {
				continue
			}
			if !s.pusher.Push(RecipientKey(n.RecipientType, n.RecipientID), "notification", n) {
				log.Printf("⚠️ %s %d not connected, notification %d kept in inbox", n.RecipientType, n.RecipientID, n.ID)
			}
		case models.ChannelSMS:
			s.sendSMS(ctx, n)
		case models.ChannelEmail:
			log.Printf("⚠️ No email provider configured, skipping email for notification %d", n.ID)
		default:
			log.Printf("⚠️ Unknown notification channel %q", channel)
		}
	}
}

func (s *NotificationService) sendSMS(ctx context.Context, n *models.Notification) {
	if s.sms == nil {
		return
	}

	phone, err := s.recipientPhone(ctx, n.RecipientType, n.RecipientID)
	if err != nil {
		log.Printf("❌ Failed to look up phone for %s %d: %v", n.RecipientType, n.RecipientID, err)
		return
	}
	if phone == "" {
		return
	}

	body := n.Title
	if n.Content != "" {
		body += ": " + n.Content
	}
	sid, err := s.sms.SendSMS(ctx, phone, body)
	if err != nil {
		log.Printf("❌ Failed to send SMS for notification %d: %v", n.ID, err)
		return
	}
	log.Printf("✅ SMS for notification %d sent, SID: %s", n.ID, sid)
}

func (s *NotificationService) recipientPhone(ctx context.Context, t models.RecipientType, id uint) (string, error) {
	if t == models.RecipientEmployee {
		employee, err := s.store.Employees.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return employee.Phone, nil
	}
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Phone, nil
}

// List returns the caller's inbox.
func (s *NotificationService) List(ctx context.Context, p Principal, unreadOnly bool, page repository.Page) ([]models.Notification, int64, error) {
	return s.store.Notifications.ListForRecipient(ctx, models.RecipientTypeFor(p.Role), p.ID, unreadOnly, page)
}

func (s *NotificationService) UnreadCount(ctx context.Context, p Principal) (int64, error) {
	return s.store.Notifications.CountUnread(ctx, models.RecipientTypeFor(p.Role), p.ID)
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, p Principal, id uint) (*models.Notification, error) {
	n, err := s.store.Notifications.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "notification")
	}
	if n.RecipientType != models.RecipientTypeFor(p.Role) || n.RecipientID != p.ID {
		return nil, ErrForbidden("You can only update your own notifications")
	}
	if n.IsRead {
		return n, nil
	}

	now := time.Now()
	if err := s.store.Notifications.MarkRead(ctx, id, now); err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

// Create handles POST /api/notifications. Admins may address anyone; other
// callers can only create notifications for themselves.
func (s *NotificationService) Create(ctx context.Context, p Principal, input models.NotificationCreate) (*models.Notification, error) {
	recipientType := input.RecipientType
	recipientID := input.RecipientID
	if recipientType == "" {
		recipientType = models.RecipientTypeFor(p.Role)
	}
	if recipientID == 0 {
		recipientID = p.ID
	}

	if !p.IsAdmin() && (recipientType != models.RecipientTypeFor(p.Role) || recipientID != p.ID) {
		return nil, ErrForbidden("Only administrators can notify other accounts")
	}

	if p.IsAdmin() {
		var err error
		if recipientType == models.RecipientEmployee {
			_, err = s.store.Employees.FindByID(ctx, recipientID)
		} else {
			_, err = s.store.Users.FindByID(ctx, recipientID)
		}
		if err != nil {
			return nil, notFoundOr(err, "recipient")
		}
	}

	n := &models.Notification{
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Type:          input.Type,
		Title:         input.Title,
		Content:       input.Content,
		Link:          input.Link,
		Channels:      input.Channels,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
