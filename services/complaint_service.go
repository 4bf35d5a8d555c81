package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"marketplace-server/models"
	"marketplace-server/repository"
)

type ComplaintService struct {
	store    *repository.Store
	notifier Notifier
}

func NewComplaintService(store *repository.Store, notifier Notifier) *ComplaintService {
	return &ComplaintService{store: store, notifier: notifier}
}

func (s *ComplaintService) Create(ctx context.Context, p Principal, input models.ComplaintCreate) (*models.Complaint, error) {
	if !p.IsCustomer() {
		return nil, ErrForbidden("Only customers can file complaints")
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, ErrValidation("subject and description are required")
	}

	if input.EmployeeID != nil {
		if _, err := s.store.Employees.FindByID(ctx, *input.EmployeeID); err != nil {
			return nil, notFoundOr(err, "professional")
		}
	}
	if input.QuoteID != nil {
		quote, err := s.store.Quotes.FindByID(ctx, *input.QuoteID)
		if err != nil {
			return nil, notFoundOr(err, "quote")
		}
		if quote.CustomerID == nil || *quote.CustomerID != p.ID {
			return nil, ErrForbidden("You can only complain about your own quotes")
		}
	}

	complaint := &models.Complaint{
		UserID:      p.ID,
		EmployeeID:  input.EmployeeID,
		QuoteID:     input.QuoteID,
		Subject:     subject,
		Description: description,
		Status:      models.ComplaintOpen,
	}
	if err := s.store.Complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}
	log.Printf("✅ Complaint %d filed by user %d", complaint.ID, p.ID)
	return complaint, nil
}

func (s *ComplaintService) ListMine(ctx context.Context, p Principal, page repository.Page) ([]models.Complaint, int64, error) {
	return s.store.Complaints.List(ctx, p.ID, "", page)
}

// ListAll is the admin view, optionally narrowed to one status.
func (s *ComplaintService) ListAll(ctx context.Context, status models.ComplaintStatus, page repository.Page) ([]models.Complaint, int64, error) {
	return s.store.Complaints.List(ctx, 0, status, page)
}

func (s *ComplaintService) Get(ctx context.Context, p Principal, id uint) (*models.Complaint, error) {
	complaint, err := s.store.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	if !p.IsAdmin() && (!p.IsCustomer() || complaint.UserID != p.ID) {
		return nil, ErrForbidden("You can only view your own complaints")
	}
	return complaint, nil
}

// Update edits the text of a complaint. Only the author may do so, and
// only while it is still open.
func (s *ComplaintService) Update(ctx context.Context, p Principal, id uint, input models.ComplaintUpdate) (*models.Complaint, error) {
	complaint, err := s.store.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	if !p.IsCustomer() || complaint.UserID != p.ID {
		return nil, ErrForbidden("You can only update your own complaints")
	}
	if complaint.Status != models.ComplaintOpen {
		return nil, ErrConflict("Only open complaints can be edited")
	}

	updates := map[string]interface{}{}
	if input.Subject != nil {
		updates["subject"] = strings.TrimSpace(*input.Subject)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if err := s.store.Complaints.Update(ctx, complaint, updates); err != nil {
		return nil, err
	}
	return s.store.Complaints.FindByID(ctx, id)
}

// UpdateStatus moves a complaint forward. Resolving or closing it records
// the admin and time, and the author is notified.
func (s *ComplaintService) UpdateStatus(ctx context.Context, admin Principal, id uint, input models.ComplaintStatusUpdate) (*models.Complaint, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden("Admin access required")
	}
	complaint, err := s.store.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	if !complaint.Status.CanMoveTo(input.Status) {
		return nil, ErrConflict(fmt.Sprintf("Complaint cannot move from %s to %s", complaint.Status, input.Status))
	}

	updates := map[string]interface{}{"status": input.Status}
	if resolution := strings.TrimSpace(input.Resolution); resolution != "" {
		updates["resolution"] = resolution
	}
	if input.Status == models.ComplaintResolved || input.Status == models.ComplaintClosed {
		now := time.Now()
		updates["resolved_by"] = admin.ID
		updates["resolved_at"] = now
	}
	if err := s.store.Complaints.Update(ctx, complaint, updates); err != nil {
		return nil, err
	}

	updated, err := s.store.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Complaint %d moved to %s by admin %d", id, input.Status, admin.ID)

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, &models.Notification{
			RecipientType: models.RecipientUser,
			RecipientID:   updated.UserID,
			Type:          models.NotificationComplaint,
			Title:         "Complaint updated",
			Content:       fmt.Sprintf("Your complaint %q is now %s", updated.Subject, updated.Status),
			Link:          fmt.Sprintf("/complaints/%d", updated.ID),
			Channels:      []string{models.ChannelInApp, models.ChannelPush},
		})
		if err != nil {
			log.Printf("❌ Failed to notify user %d about complaint %d: %v", updated.UserID, updated.ID, err)
		}
	}
	return updated, nil
}
