package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type ComplaintRepository struct {
	db *gorm.DB
}

func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if err := r.db.WithContext(ctx).Create(complaint).Error; err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (r *ComplaintRepository) FindByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).First(&complaint, id).Error; err != nil {
		return nil, fmt.Errorf("find complaint %d: %w", id, err)
	}
	return &complaint, nil
}

// List pages through complaints. A zero userID lists everyone's and an empty
// status lists every status.
func (r *ComplaintRepository) List(ctx context.Context, userID uint, status models.ComplaintStatus, page Page) ([]models.Complaint, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Complaint{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	var complaints []models.Complaint
	if err := page.apply(q.Order("created_at DESC, id DESC")).Find(&complaints).Error; err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, total, nil
}

func (r *ComplaintRepository) Update(ctx context.Context, complaint *models.Complaint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(complaint).Updates(updates).Error; err != nil {
		return fmt.Errorf("update complaint %d: %w", complaint.ID, err)
	}
	return nil
}
