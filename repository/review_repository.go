package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Preload("User").First(&review, id).Error
	if err != nil {
		return nil, fmt.Errorf("find review %d: %w", id, err)
	}
	return &review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *models.Review, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return fmt.Errorf("update review %d: %w", review.ID, err)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

// AllForEmployee loads every review of the employee; used by the aggregate
// recomputation.
func (r *ReviewRepository) AllForEmployee(ctx context.Context, employeeID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("reviews for employee %d: %w", employeeID, err)
	}
	return reviews, nil
}

// List pages through reviews, optionally restricted to one employee.
func (r *ReviewRepository) List(ctx context.Context, employeeID uint, page Page) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{})
	if employeeID != 0 {
		q = q.Where("employee_id = ?", employeeID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	var reviews []models.Review
	if err := page.apply(q.Preload("User").Order("created_at DESC, id DESC")).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Recent(ctx context.Context, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("Employee").Order("created_at DESC").Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}
	return reviews, nil
}
