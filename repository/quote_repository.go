package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type QuoteRepository struct {
	db *gorm.DB
}

func (r *QuoteRepository) Create(ctx context.Context, quote *models.Quote) error {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

// FindByID loads the quote with its response, category and professional.
func (r *QuoteRepository) FindByID(ctx context.Context, id uint) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Response").
		Preload("Category").
		Preload("Employee").
		First(&quote, id).Error
	if err != nil {
		return nil, fmt.Errorf("find quote %d: %w", id, err)
	}
	return &quote, nil
}

// Transition moves the quote from one status to another. The update is
// conditional on the current status, so a concurrent transition makes it
// affect zero rows.
func (r *QuoteRepository) Transition(ctx context.Context, id uint, from, to models.QuoteStatus, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("transition quote %d to %s: %w", id, to, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *QuoteRepository) CreateResponse(ctx context.Context, response *models.QuoteResponse) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("create quote response: %w", err)
	}
	return nil
}

func (r *QuoteRepository) CountResponses(ctx context.Context, quoteID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuoteResponse{}).Where("quote_id = ?", quoteID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count responses for quote %d: %w", quoteID, err)
	}
	return count, nil
}

func (r *QuoteRepository) ListByCustomer(ctx context.Context, customerID uint, page Page) ([]models.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Quote{}).Where("customer_id = ?", customerID).Session(&gorm.Session{})
	return r.list(q, page)
}

// ListByEmployee returns the professional's incoming quotes, optionally
// filtered by status.
func (r *QuoteRepository) ListByEmployee(ctx context.Context, employeeID uint, status models.QuoteStatus, page Page) ([]models.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Quote{}).Where("employee_id = ?", employeeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q.Session(&gorm.Session{}), page)
}

func (r *QuoteRepository) list(q *gorm.DB, page Page) ([]models.Quote, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}

	var quotes []models.Quote
	err := page.apply(q.Preload("Response").Preload("Category").Order("created_at DESC, id DESC")).Find(&quotes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, total, nil
}

// CountForEmployee counts the professional's quotes; an empty status counts all.
func (r *QuoteRepository) CountForEmployee(ctx context.Context, employeeID uint, status models.QuoteStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Quote{}).Where("employee_id = ?", employeeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count employee %d quotes: %w", employeeID, err)
	}
	return count, nil
}

func (r *QuoteRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Quote{}).Where("created_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count quotes since %s: %w", since.Format(time.RFC3339), err)
	}
	return count, nil
}

func (r *QuoteRepository) RecentForEmployee(ctx context.Context, employeeID uint, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("recent quotes for employee %d: %w", employeeID, err)
	}
	return quotes, nil
}

func (r *QuoteRepository) Recent(ctx context.Context, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).Preload("Employee").Order("created_at DESC").Limit(limit).Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("recent quotes: %w", err)
	}
	return quotes, nil
}

// FindStaleResponded returns responded quotes whose offer is no longer valid.
func (r *QuoteRepository) FindStaleResponded(ctx context.Context, now time.Time, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Joins("JOIN quote_responses ON quote_responses.quote_id = quotes.id").
		Where("quotes.status = ? AND quote_responses.valid_until <= ?", models.QuoteStatusResponded, now).
		Order("quotes.id ASC").
		Limit(limit).
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("find stale quotes: %w", err)
	}
	return quotes, nil
}
