package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-server/models"
	"marketplace-server/repository"
)

func TestAdminApprovals(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewAdminService(store, notifier)

	admin := createAdmin(t, store)
	customer := createCustomer(t, store, "c@example.com")
	first := createProfessional(t, store, "first@example.com", models.EmployeeStatusPending)
	second := createProfessional(t, store, "second@example.com", models.EmployeeStatusPending)

	// second signed up earlier and rates higher than first
	secondRow, err := store.Employees.FindByID(ctx, second.ID)
	require.NoError(t, err)
	require.NoError(t, store.Employees.Update(ctx, secondRow, map[string]interface{}{
		"created_at": time.Now().Add(-time.Hour),
		"avg_rate":   1.0,
	}))
	firstRow, err := store.Employees.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, store.Employees.Update(ctx, firstRow, map[string]interface{}{"avg_rate": 4.5}))

	pending, total, err := svc.Approvals(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)

	_, err = svc.Approve(ctx, customer, first.ID)
	requireServiceError(t, err, http.StatusForbidden)

	approved, err := svc.Approve(ctx, admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, admin.ID, *approved.ReviewedBy)

	_, err = svc.Reject(ctx, admin, first.ID, "changed my mind")
	requireServiceError(t, err, http.StatusConflict)

	rejected, err := svc.Reject(ctx, admin, second.ID, "  Missing documents ")
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusRejected, rejected.Status)
	assert.Equal(t, "Missing documents", rejected.RejectionReason)

	_, err = svc.Approve(ctx, admin, 999)
	requireServiceError(t, err, http.StatusNotFound)

	assert.Equal(t, []string{models.NotificationApproval, models.NotificationApproval}, notifier.Types())

	pending, total, err = svc.Approvals(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, pending)
}

func TestAdminDashboard(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewAdminService(store, nil)
	quotes := NewQuoteService(store, nil, 0)
	reviews := NewReviewService(store)

	createAdmin(t, store)
	alice := createCustomer(t, store, "alice@example.com")
	createCustomer(t, store, "bob@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	createProfessional(t, store, "q@example.com", models.EmployeeStatusPending)

	_, err := quotes.Create(ctx, &alice, validQuoteInput(pro.ID))
	require.NoError(t, err)
	_, err = quotes.Create(ctx, &alice, validQuoteInput(pro.ID))
	require.NoError(t, err)
	_, err = reviews.Create(ctx, alice, models.ReviewCreate{EmployeeID: pro.ID, PriceRate: 4, PerformanceRate: 4, ServiceRate: 4})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalProfessionals)
	assert.EqualValues(t, 1, stats.PendingApprovals)
	assert.EqualValues(t, 2, stats.QuotesThisMonth)

	activity, err := svc.Activity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activity, 6)
	for i := 1; i < len(activity); i++ {
		assert.False(t, activity[i].Timestamp.After(activity[i-1].Timestamp), "feed must be newest first")
	}

	limited, err := svc.Activity(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	users, total, err := svc.Users(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	counts := map[string]int64{}
	for _, u := range users {
		counts[u.Email] = u.QuoteCount
	}
	assert.EqualValues(t, 2, counts["alice@example.com"])
	assert.EqualValues(t, 0, counts["bob@example.com"])

	all, total, err := svc.Reviews(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, all, 1)
}
