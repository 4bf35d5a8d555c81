package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"marketplace-server/models"
	"marketplace-server/repository"
	"marketplace-server/utils"
)

// AuthResult is returned by every login and registration call.
type AuthResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *models.User     `json:"user,omitempty"`
	Employee  *models.Employee `json:"employee,omitempty"`
}

type AuthService struct {
	store *repository.Store
}

func NewAuthService(store *repository.Store) *AuthService {
	return &AuthService{store: store}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input models.UserRegister) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.store.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict("An account with this email already exists")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         models.RoleCustomer,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("An account with this email already exists")
		}
		return nil, err
	}

	log.Printf("✅ User registered: %d", user.ID)
	return s.issueForUser(user)
}

// Login verifies a customer or admin password and issues a token.
func (s *AuthService) Login(ctx context.Context, input models.LoginRequest) (*AuthResult, error) {
	user, err := s.store.Users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrUnauthorized("Invalid email or password")
	}

	now := time.Now()
	if err := s.store.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.issueForUser(user)
}

func (s *AuthService) issueForUser(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterProfessional creates a pending professional account.
func (s *AuthService) RegisterProfessional(ctx context.Context, input models.EmployeeRegister) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.store.Employees.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict("An account with this email already exists")
	}

	categories, err := s.store.Categories.FindByIDs(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(uniqueIDs(input.CategoryIDs)) {
		return nil, ErrValidation("One or more categories do not exist")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	employee := &models.Employee{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Area:         input.Area,
		Gender:       input.Gender,
		Bio:          input.Bio,
		Status:       models.EmployeeStatusPending,
		Categories:   categories,
	}
	if err := s.store.Employees.Create(ctx, employee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("An account with this email already exists")
		}
		return nil, err
	}

	log.Printf("✅ Professional registered: %d (pending approval)", employee.ID)
	return s.issueForEmployee(employee)
}

// LoginProfessional signs in a professional. Pending and rejected accounts
// may still sign in to see their status.
func (s *AuthService) LoginProfessional(ctx context.Context, input models.LoginRequest) (*AuthResult, error) {
	employee, err := s.store.Employees.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(input.Password, employee.PasswordHash) {
		return nil, ErrUnauthorized("Invalid email or password")
	}

	now := time.Now()
	if err := s.store.Employees.TouchLastLogin(ctx, employee.ID, now); err != nil {
		return nil, err
	}
	employee.LastLoginAt = &now

	return s.issueForEmployee(employee)
}

func (s *AuthService) issueForEmployee(employee *models.Employee) (*AuthResult, error) {
	token, expiresAt, err := utils.GenerateToken(employee.ID, employee.Email, string(models.RoleProfessional))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Employee: employee}, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
