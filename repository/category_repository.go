package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketplace-server/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("find category %d: %w", id, err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return count > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) UpdateImage(ctx context.Context, id uint, image string) error {
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("image", image).Error
	if err != nil {
		return fmt.Errorf("update category %d image: %w", id, err)
	}
	return nil
}

// ListWithProfessionalCounts groups the join table per category.
func (r *CategoryRepository) ListWithProfessionalCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	var rows []models.CategoryWithCount
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.*, COUNT(employee_categories.employee_id) AS professional_count").
		Joins("LEFT JOIN employee_categories ON employee_categories.category_id = categories.id").
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list categories with counts: %w", err)
	}
	return rows, nil
}
