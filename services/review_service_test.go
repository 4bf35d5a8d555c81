package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-server/models"
	"marketplace-server/repository"
)

func TestReviewAggregates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewReviewService(store)

	alice := createCustomer(t, store, "alice@example.com")
	bob := createCustomer(t, store, "bob@example.com")
	admin := createAdmin(t, store)
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)

	first, err := svc.Create(ctx, alice, models.ReviewCreate{
		EmployeeID: pro.ID, PriceRate: 5, PerformanceRate: 4, ServiceRate: 3, Comment: "Good",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, first.Rate)

	_, err = svc.Create(ctx, bob, models.ReviewCreate{
		EmployeeID: pro.ID, Rate: 2, PriceRate: 1, PerformanceRate: 2, ServiceRate: 3,
	})
	require.NoError(t, err)

	employee, err := store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, employee.AvgRate, 0.001)
	assert.InDelta(t, 3.0, employee.AvgPriceRate, 0.001)
	assert.InDelta(t, 3.0, employee.AvgPerformanceRate, 0.001)
	assert.InDelta(t, 3.0, employee.AvgServiceRate, 0.001)
	assert.Equal(t, 2, employee.ReviewCount)

	five := 5
	_, err = svc.Update(ctx, bob, first.ID, models.ReviewUpdate{Rate: &five})
	requireServiceError(t, err, http.StatusForbidden)

	updated, err := svc.Update(ctx, alice, first.ID, models.ReviewUpdate{Rate: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rate)

	employee, err = store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, employee.AvgRate, 0.001)

	require.NoError(t, svc.Delete(ctx, admin, first.ID))
	employee, err = store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, employee.AvgRate, 0.001)
	assert.Equal(t, 1, employee.ReviewCount)

	reviews, total, err := svc.List(ctx, pro.ID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reviews, 1)

	// removing the last review keeps the previous averages but not the count
	require.NoError(t, svc.Delete(ctx, bob, reviews[0].ID))
	employee, err = store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, employee.AvgRate, 0.001)
	assert.InDelta(t, 1.0, employee.AvgPriceRate, 0.001)
	assert.Equal(t, 0, employee.ReviewCount)

	stats, err := NewEmployeeService(store).Stats(ctx, nil, pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ReviewCount)
}

func TestReviewCreateErrors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewReviewService(store)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	pending := createProfessional(t, store, "pending@example.com", models.EmployeeStatusPending)
	rejected := createProfessional(t, store, "rejected@example.com", models.EmployeeStatusRejected)

	tests := []struct {
		name     string
		caller   Principal
		input    models.ReviewCreate
		wantCode int
	}{
		{
			name:     "score out of range",
			caller:   customer,
			input:    models.ReviewCreate{EmployeeID: pro.ID, PriceRate: 6, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown professional",
			caller:   customer,
			input:    models.ReviewCreate{EmployeeID: 404, PriceRate: 3, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "pending professional",
			caller:   customer,
			input:    models.ReviewCreate{EmployeeID: pending.ID, PriceRate: 3, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "rejected professional",
			caller:   customer,
			input:    models.ReviewCreate{EmployeeID: rejected.ID, PriceRate: 3, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown author",
			caller:   Principal{ID: 999, Role: models.RoleCustomer},
			input:    models.ReviewCreate{EmployeeID: pro.ID, PriceRate: 3, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "professional cannot review",
			caller:   pro,
			input:    models.ReviewCreate{EmployeeID: pro.ID, PriceRate: 3, PerformanceRate: 3, ServiceRate: 3},
			wantCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.caller, tt.input)
			requireServiceError(t, err, tt.wantCode)
		})
	}

	employee, err := store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.Zero(t, employee.ReviewCount)
}

func TestReviewUpdateRederivesRate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewReviewService(store)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)

	review, err := svc.Create(ctx, customer, models.ReviewCreate{
		EmployeeID: pro.ID, PriceRate: 5, PerformanceRate: 5, ServiceRate: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 5, review.Rate)

	one, two := 1, 2
	comment := "Changed my mind"
	tests := []struct {
		name     string
		input    models.ReviewUpdate
		wantRate int
	}{
		{name: "dimension change re-derives", input: models.ReviewUpdate{PriceRate: &one}, wantRate: 4},
		{name: "comment only keeps rate", input: models.ReviewUpdate{Comment: &comment}, wantRate: 4},
		{name: "explicit rate wins", input: models.ReviewUpdate{ServiceRate: &one, Rate: &two}, wantRate: 2},
		{name: "second dimension change", input: models.ReviewUpdate{PerformanceRate: &one}, wantRate: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.Update(ctx, customer, review.ID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, updated.Rate)
		})
	}

	employee, err := store.Employees.FindByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, employee.AvgRate, 0.001)
}
