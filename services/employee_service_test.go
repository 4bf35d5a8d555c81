package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-server/models"
	"marketplace-server/repository"
)

func TestEmployeeDirectory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewEmployeeService(store)

	admin := createAdmin(t, store)
	approved := createProfessional(t, store, "a@example.com", models.EmployeeStatusApproved)
	pending := createProfessional(t, store, "p@example.com", models.EmployeeStatusPending)

	_, err := svc.SetCategories(ctx, approved, []uint{3})
	require.NoError(t, err)

	list, total, err := svc.List(ctx, nil, models.EmployeeFilter{}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, approved.ID, list[0].ID)

	// non-admins cannot widen the filter to other statuses
	list, _, err = svc.List(ctx, &approved, models.EmployeeFilter{Status: models.EmployeeStatusPending}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, approved.ID, list[0].ID)

	list, _, err = svc.List(ctx, &admin, models.EmployeeFilter{Status: models.EmployeeStatusPending}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	byCategory, _, err := svc.List(ctx, nil, models.EmployeeFilter{CategoryID: 3}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
	byCategory, _, err = svc.List(ctx, nil, models.EmployeeFilter{CategoryID: 4}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	bySearch, _, err := svc.List(ctx, nil, models.EmployeeFilter{Search: "PRO A@"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, bySearch, 1)

	_, err = svc.Get(ctx, nil, pending.ID)
	requireServiceError(t, err, http.StatusNotFound)
	_, err = svc.Get(ctx, &pending, pending.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, &admin, pending.ID)
	require.NoError(t, err)
}

func TestEmployeeSelfService(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewEmployeeService(store)
	quotes := NewQuoteService(store, nil, 0)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	other := createProfessional(t, store, "o@example.com", models.EmployeeStatusApproved)

	bio := "Twenty years of plumbing"
	updated, err := svc.UpdateMe(ctx, pro, models.EmployeeUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	_, err = svc.UpdateMe(ctx, customer, models.EmployeeUpdate{Bio: &bio})
	requireServiceError(t, err, http.StatusForbidden)

	_, err = svc.SetCategories(ctx, pro, []uint{2, 999})
	requireServiceError(t, err, http.StatusBadRequest)

	withCats, err := svc.SetCategories(ctx, pro, []uint{2, 3})
	require.NoError(t, err)
	assert.Len(t, withCats.Categories, 2)

	for i := 0; i < 3; i++ {
		_, err := quotes.Create(ctx, &customer, validQuoteInput(pro.ID))
		require.NoError(t, err)
	}
	respondedQuote(t, store, quotes, customer, pro)

	stats, err := svc.Stats(ctx, nil, pro.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalQuotes)
	assert.EqualValues(t, 3, stats.PendingQuotes)
	assert.Zero(t, stats.AcceptedQuotes)

	recent, err := svc.RecentRequests(ctx, pro, pro.ID, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	_, err = svc.RecentRequests(ctx, other, pro.ID, 2)
	requireServiceError(t, err, http.StatusForbidden)
}

func TestCategoryService(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	images := &fakeImageStore{}
	svc := NewCategoryService(store, images)

	categories, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	general, err := svc.Get(ctx, models.DefaultCategoryID)
	require.NoError(t, err)
	assert.Equal(t, "General Services", general.Name)

	_, err = svc.Get(ctx, 999)
	requireServiceError(t, err, http.StatusNotFound)

	created, err := svc.Create(ctx, models.CategoryCreate{Name: "Roofing"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.CategoryCreate{Name: "roofing"})
	requireServiceError(t, err, http.StatusConflict)

	withImage, err := svc.UploadImage(ctx, created.ID, strings.NewReader("jpeg"), "roof.jpg")
	require.NoError(t, err)
	assert.Contains(t, withImage.Image, "categories/")

	_, err = svc.UploadImage(ctx, created.ID, strings.NewReader("txt"), "notes.txt")
	requireServiceError(t, err, http.StatusBadRequest)

	_, err = NewCategoryService(store, disabledStore{}).UploadImage(ctx, created.ID, strings.NewReader("jpeg"), "roof.jpg")
	requireServiceError(t, err, http.StatusServiceUnavailable)

	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	_, err = NewEmployeeService(store).SetCategories(ctx, pro, []uint{created.ID})
	require.NoError(t, err)

	counts, err := svc.ListWithCounts(ctx)
	require.NoError(t, err)
	for _, c := range counts {
		if c.ID == created.ID {
			assert.EqualValues(t, 1, c.ProfessionalCount)
		}
	}
}
