package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"marketplace-server/models"
	"marketplace-server/repository"
)

type CategoryService struct {
	store  *repository.Store
	images ImageStore
}

func NewCategoryService(store *repository.Store, images ImageStore) *CategoryService {
	return &CategoryService{store: store, images: images}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.store.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	return category, nil
}

func (s *CategoryService) ListWithCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.store.Categories.ListWithProfessionalCounts(ctx)
}

func (s *CategoryService) Create(ctx context.Context, input models.CategoryCreate) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	exists, err := s.store.Categories.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict("A category with this name already exists")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
		Image:       input.Image,
		Parent:      input.Parent,
	}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UploadImage stores the file through the image store and records its URL.
func (s *CategoryService) UploadImage(ctx context.Context, id uint, file io.Reader, filename string) (*models.Category, error) {
	category, err := s.store.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	if !AllowedImageExt(filename) {
		return nil, ErrValidation("Unsupported image type")
	}

	url, err := s.images.Upload(ctx, file, filename, fmt.Sprintf("categories/%d", id))
	if err != nil {
		return nil, err
	}
	if err := s.store.Categories.UpdateImage(ctx, id, url); err != nil {
		return nil, err
	}
	category.Image = url
	return category, nil
}
