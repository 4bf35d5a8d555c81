package services

import (
	"context"
	"strings"

	"marketplace-server/models"
	"marketplace-server/repository"
)

type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// Profile returns the caller's account: a *models.User for customers and
// admins, a *models.Employee for professionals.
func (s *UserService) Profile(ctx context.Context, p Principal) (interface{}, error) {
	if p.IsProfessional() {
		employee, err := s.store.Employees.FindByID(ctx, p.ID)
		if err != nil {
			return nil, notFoundOr(err, "professional")
		}
		return employee, nil
	}

	user, err := s.store.Users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, p Principal, input models.UserUpdate) (*models.User, error) {
	if p.IsProfessional() {
		return nil, ErrForbidden("Professionals update their profile through /api/employees/me")
	}

	user, err := s.store.Users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if err := s.store.Users.Update(ctx, user, updates); err != nil {
		return nil, err
	}

	return s.store.Users.FindByID(ctx, p.ID)
}
