package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"marketplace-server/models"
	"marketplace-server/repository"
)

const defaultRecentRequests = 10

type EmployeeService struct {
	store *repository.Store
}

func NewEmployeeService(store *repository.Store) *EmployeeService {
	return &EmployeeService{store: store}
}

// List returns approved professionals for the public directory. Admins may
// ask for any status.
func (s *EmployeeService) List(ctx context.Context, viewer *Principal, filter models.EmployeeFilter, page repository.Page) ([]models.Employee, int64, error) {
	if viewer == nil || !viewer.IsAdmin() || filter.Status == "" {
		filter.Status = models.EmployeeStatusApproved
	}
	return s.store.Employees.List(ctx, filter, page)
}

// Get returns one professional. Unapproved profiles are only visible to
// their owner and admins.
func (s *EmployeeService) Get(ctx context.Context, viewer *Principal, id uint) (*models.Employee, error) {
	employee, err := s.store.Employees.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "professional")
	}
	if !employee.IsApproved() && !canSeeEmployee(viewer, id) {
		return nil, ErrNotFound("professional")
	}
	return employee, nil
}

func canSeeEmployee(viewer *Principal, id uint) bool {
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin() || (viewer.IsProfessional() && viewer.ID == id)
}

// Stats runs the independent count queries concurrently.
func (s *EmployeeService) Stats(ctx context.Context, viewer *Principal, id uint) (*models.EmployeeStats, error) {
	employee, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	stats := &models.EmployeeStats{
		EmployeeID:         employee.ID,
		ReviewCount:        employee.ReviewCount,
		AvgRate:            employee.AvgRate,
		AvgPriceRate:       employee.AvgPriceRate,
		AvgPerformanceRate: employee.AvgPerformanceRate,
		AvgServiceRate:     employee.AvgServiceRate,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalQuotes, err = s.store.Quotes.CountForEmployee(gctx, id, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PendingQuotes, err = s.store.Quotes.CountForEmployee(gctx, id, models.QuoteStatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.AcceptedQuotes, err = s.store.Quotes.CountForEmployee(gctx, id, models.QuoteStatusAccepted)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentRequests lists the latest quotes addressed to the professional.
func (s *EmployeeService) RecentRequests(ctx context.Context, viewer Principal, id uint, limit int) ([]models.Quote, error) {
	if !canSeeEmployee(&viewer, id) {
		return nil, ErrForbidden("You can only view your own requests")
	}
	if _, err := s.store.Employees.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "professional")
	}
	if limit <= 0 || limit > 50 {
		limit = defaultRecentRequests
	}
	return s.store.Quotes.RecentForEmployee(ctx, id, limit)
}

func (s *EmployeeService) UpdateMe(ctx context.Context, p Principal, input models.EmployeeUpdate) (*models.Employee, error) {
	if !p.IsProfessional() {
		return nil, ErrForbidden("Only professionals can update a professional profile")
	}
	employee, err := s.store.Employees.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "professional")
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Area != nil {
		updates["area"] = *input.Area
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.ProfileImage != nil {
		updates["profile_image"] = *input.ProfileImage
	}
	if err := s.store.Employees.Update(ctx, employee, updates); err != nil {
		return nil, err
	}
	return s.store.Employees.FindByID(ctx, p.ID)
}

// SetCategories replaces the professional's category memberships.
func (s *EmployeeService) SetCategories(ctx context.Context, p Principal, ids []uint) (*models.Employee, error) {
	if !p.IsProfessional() {
		return nil, ErrForbidden("Only professionals can choose categories")
	}
	employee, err := s.store.Employees.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "professional")
	}

	categories, err := s.store.Categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(uniqueIDs(ids)) {
		return nil, ErrValidation("One or more categories do not exist")
	}

	if err := s.store.Employees.ReplaceCategories(ctx, employee, categories); err != nil {
		return nil, err
	}
	return employee, nil
}
