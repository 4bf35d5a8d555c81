package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Preload("Categories").First(&employee, id).Error; err != nil {
		return nil, fmt.Errorf("find employee %d: %w", id, err)
	}
	return &employee, nil
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, fmt.Errorf("find employee by email: %w", err)
	}
	return &employee, nil
}

func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Employee{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return count > 0, nil
}

// List filters by status, category membership, area and a free-text search
// over name and bio.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter, page Page) ([]models.Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Employee{})
	if filter.Status != "" {
		q = q.Where("employees.status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		q = q.Where("employees.id IN (?)",
			r.db.Table("employee_categories").Select("employee_id").Where("category_id = ?", filter.CategoryID))
	}
	if filter.Area != "" {
		q = q.Where("LOWER(employees.area) = ?", strings.ToLower(filter.Area))
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(employees.name) LIKE ? OR LOWER(employees.bio) LIKE ?)", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	var employees []models.Employee
	err := page.apply(q.Preload("Categories").Order("employees.avg_rate DESC, employees.id ASC")).Find(&employees).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return employees, total, nil
}

// ListPending returns professionals awaiting approval, oldest signup first.
func (r *EmployeeRepository) ListPending(ctx context.Context, page Page) ([]models.Employee, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Employee{}).Where("status = ?", models.EmployeeStatusPending)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count pending employees: %w", err)
	}

	var employees []models.Employee
	err := page.apply(q.Preload("Categories").Order("created_at ASC, id ASC")).Find(&employees).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list pending employees: %w", err)
	}
	return employees, total, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(employee).Updates(updates).Error; err != nil {
		return fmt.Errorf("update employee %d: %w", employee.ID, err)
	}
	return nil
}

func (r *EmployeeRepository) ReplaceCategories(ctx context.Context, employee *models.Employee, categories []models.Category) error {
	if err := r.db.WithContext(ctx).Model(employee).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("replace employee %d categories: %w", employee.ID, err)
	}
	employee.Categories = categories
	return nil
}

// UpdateRatings overwrites the stored aggregates.
func (r *EmployeeRepository) UpdateRatings(ctx context.Context, id uint, agg models.RatingAggregate) error {
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avg_rate":             agg.Rate,
		"avg_price_rate":       agg.PriceRate,
		"avg_performance_rate": agg.PerformanceRate,
		"avg_service_rate":     agg.ServiceRate,
		"review_count":         agg.Count,
	}).Error
	if err != nil {
		return fmt.Errorf("update employee %d ratings: %w", id, err)
	}
	return nil
}

// ResetReviewCount zeroes review_count and leaves the averages alone.
func (r *EmployeeRepository) ResetReviewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Update("review_count", 0).Error
	if err != nil {
		return fmt.Errorf("reset employee %d review count: %w", id, err)
	}
	return nil
}

func (r *EmployeeRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("touch employee login %d: %w", id, err)
	}
	return nil
}

// SetApproval records an admin decision. Only pending rows are changed;
// the returned count is zero when the employee was already decided.
func (r *EmployeeRepository) SetApproval(ctx context.Context, id uint, status models.EmployeeStatus, adminID uint, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("id = ? AND status = ?", id, models.EmployeeStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewed_by":      adminID,
			"reviewed_at":      at,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("set employee %d approval: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *EmployeeRepository) Count(ctx context.Context, status models.EmployeeStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Employee{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}
