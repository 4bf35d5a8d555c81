package services

import (
	"context"
	"log"

	"marketplace-server/models"
	"marketplace-server/repository"
)

type ReviewService struct {
	store *repository.Store
}

func NewReviewService(store *repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

func (s *ReviewService) List(ctx context.Context, employeeID uint, page repository.Page) ([]models.Review, int64, error) {
	return s.store.Reviews.List(ctx, employeeID, page)
}

func (s *ReviewService) Get(ctx context.Context, id uint) (*models.Review, error) {
	review, err := s.store.Reviews.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "review")
	}
	return review, nil
}

// Create stores a review from a customer and refreshes the professional's
// aggregates in the same transaction.
func (s *ReviewService) Create(ctx context.Context, p Principal, input models.ReviewCreate) (*models.Review, error) {
	if !p.IsCustomer() {
		return nil, ErrForbidden("Only customers can review professionals")
	}
	if err := validateScores(input.Rate, input.PriceRate, input.PerformanceRate, input.ServiceRate); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:          p.ID,
		EmployeeID:      input.EmployeeID,
		Rate:            input.Rate,
		PriceRate:       input.PriceRate,
		PerformanceRate: input.PerformanceRate,
		ServiceRate:     input.ServiceRate,
		Comment:         input.Comment,
	}
	if review.Rate == 0 {
		review.Rate = models.OverallRate(input.PriceRate, input.PerformanceRate, input.ServiceRate)
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.FindByID(ctx, p.ID); err != nil {
			return notFoundOr(err, "user")
		}
		employee, err := tx.Employees.FindByID(ctx, input.EmployeeID)
		if err != nil {
			return notFoundOr(err, "professional")
		}
		if !employee.IsApproved() {
			return ErrNotFound("professional")
		}
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return err
		}
		_, _, err = RecomputeEmployeeRatings(ctx, tx, review.EmployeeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Review %d created for employee %d", review.ID, review.EmployeeID)
	return review, nil
}

// Update lets the author change scores or comment.
func (s *ReviewService) Update(ctx context.Context, p Principal, id uint, input models.ReviewUpdate) (*models.Review, error) {
	var updated *models.Review
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		review, err := tx.Reviews.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "review")
		}
		if !p.IsCustomer() || review.UserID != p.ID {
			return ErrForbidden("You can only update your own reviews")
		}

		updates := map[string]interface{}{}
		if input.Rate != nil {
			updates["rate"] = *input.Rate
		}
		if input.PriceRate != nil {
			updates["price_rate"] = *input.PriceRate
		}
		if input.PerformanceRate != nil {
			updates["performance_rate"] = *input.PerformanceRate
		}
		if input.ServiceRate != nil {
			updates["service_rate"] = *input.ServiceRate
		}
		if input.Comment != nil {
			updates["comment"] = *input.Comment
		}
		if input.Rate == nil && (input.PriceRate != nil || input.PerformanceRate != nil || input.ServiceRate != nil) {
			updates["rate"] = models.OverallRate(
				scoreOr(input.PriceRate, review.PriceRate),
				scoreOr(input.PerformanceRate, review.PerformanceRate),
				scoreOr(input.ServiceRate, review.ServiceRate),
			)
		}
		for field, v := range updates {
			if score, ok := v.(int); ok && (score < 1 || score > 5) {
				return ErrValidation("%s must be between 1 and 5", field)
			}
		}

		if err := tx.Reviews.Update(ctx, review, updates); err != nil {
			return err
		}
		if _, _, err := RecomputeEmployeeRatings(ctx, tx, review.EmployeeID); err != nil {
			return err
		}

		updated, err = tx.Reviews.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a review. Admins may delete any review; customers only
// their own.
func (s *ReviewService) Delete(ctx context.Context, p Principal, id uint) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		review, err := tx.Reviews.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "review")
		}
		if !p.IsAdmin() && (!p.IsCustomer() || review.UserID != p.ID) {
			return ErrForbidden("You can only delete your own reviews")
		}

		if err := tx.Reviews.Delete(ctx, id); err != nil {
			return err
		}
		_, _, err = RecomputeEmployeeRatings(ctx, tx, review.EmployeeID)
		return err
	})
}

func scoreOr(v *int, current int) int {
	if v != nil {
		return *v
	}
	return current
}

func validateScores(rate, price, performance, service int) error {
	if rate != 0 && (rate < 1 || rate > 5) {
		return ErrValidation("rate must be between 1 and 5")
	}
	for name, v := range map[string]int{"price_rate": price, "performance_rate": performance, "service_rate": service} {
		if v < 1 || v > 5 {
			return ErrValidation("%s must be between 1 and 5", name)
		}
	}
	return nil
}
