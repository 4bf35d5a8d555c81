package services

import (
	"context"
	"log"

	"marketplace-server/models"
	"marketplace-server/repository"
)

// RecomputeEmployeeRatings rebuilds the professional's four averages from
// every current review. With no reviews left the averages are kept as they
// are and only review_count drops to zero. Callers pass the
// transaction-bound store so the recompute commits or rolls back together
// with the review write.
func RecomputeEmployeeRatings(ctx context.Context, tx *repository.Store, employeeID uint) (models.RatingAggregate, bool, error) {
	reviews, err := tx.Reviews.AllForEmployee(ctx, employeeID)
	if err != nil {
		return models.RatingAggregate{}, false, err
	}

	agg, ok := models.AggregateReviews(reviews)
	if !ok {
		log.Printf("⚠️ Employee %d has no reviews, keeping previous rating averages", employeeID)
		if err := tx.Employees.ResetReviewCount(ctx, employeeID); err != nil {
			return agg, false, err
		}
		return agg, false, nil
	}

	if err := tx.Employees.UpdateRatings(ctx, employeeID, agg); err != nil {
		return agg, false, err
	}
	return agg, true, nil
}
