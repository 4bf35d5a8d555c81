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

func validQuoteInput(professionalID uint) models.QuoteCreate {
	return models.QuoteCreate{
		ProfessionalID: professionalID,
		Answers:        []models.QuoteAnswer{{Question: "What needs fixing?", Answer: "Kitchen sink"}},
		Urgency:        models.UrgencyHigh,
		ResponseMethod: models.ResponseMethodChat,
		Description:    "Leaking under the sink",
	}
}

func TestQuoteCreate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewQuoteService(store, notifier, 0)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	pending := createProfessional(t, store, "pending@example.com", models.EmployeeStatusPending)
	rejected := createProfessional(t, store, "rejected@example.com", models.EmployeeStatusRejected)

	t.Run("customer quote defaults category", func(t *testing.T) {
		quote, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusPending, quote.Status)
		assert.Equal(t, models.DefaultCategoryID, quote.CategoryID)
		require.NotNil(t, quote.CustomerID)
		assert.Equal(t, customer.ID, *quote.CustomerID)
		assert.Contains(t, notifier.Types(), models.NotificationQuoteReceived)

		stored, err := store.Quotes.FindByID(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, stored.Answers, 1)
		assert.Equal(t, "Kitchen sink", stored.Answers[0].Answer)
	})

	t.Run("guest quote", func(t *testing.T) {
		input := validQuoteInput(pro.ID)
		input.GuestName = "Walk In"
		input.GuestEmail = "guest@example.com"
		quote, err := svc.Create(ctx, nil, input)
		require.NoError(t, err)
		assert.True(t, quote.IsGuest())
	})

	tests := []struct {
		name     string
		caller   *Principal
		mutate   func(in *models.QuoteCreate)
		wantCode int
	}{
		{name: "guest without contact", caller: nil, mutate: func(in *models.QuoteCreate) {}, wantCode: http.StatusBadRequest},
		{name: "guest bad email", caller: nil, mutate: func(in *models.QuoteCreate) {
			in.GuestName, in.GuestEmail = "G", "not-an-email"
		}, wantCode: http.StatusBadRequest},
		{name: "missing answers", caller: &customer, mutate: func(in *models.QuoteCreate) { in.Answers = nil }, wantCode: http.StatusBadRequest},
		{name: "missing professional", caller: &customer, mutate: func(in *models.QuoteCreate) { in.ProfessionalID = 0 }, wantCode: http.StatusBadRequest},
		{name: "bad urgency", caller: &customer, mutate: func(in *models.QuoteCreate) { in.Urgency = "soon" }, wantCode: http.StatusBadRequest},
		{name: "bad response method", caller: &customer, mutate: func(in *models.QuoteCreate) { in.ResponseMethod = "fax" }, wantCode: http.StatusBadRequest},
		{name: "unknown professional", caller: &customer, mutate: func(in *models.QuoteCreate) { in.ProfessionalID = 999 }, wantCode: http.StatusNotFound},
		{name: "unknown category", caller: &customer, mutate: func(in *models.QuoteCreate) { in.CategoryID = 999 }, wantCode: http.StatusNotFound},
		{name: "professional caller", caller: &pro, mutate: func(in *models.QuoteCreate) {}, wantCode: http.StatusForbidden},
		{name: "pending professional", caller: &customer, mutate: func(in *models.QuoteCreate) { in.ProfessionalID = pending.ID }, wantCode: http.StatusNotFound},
		{name: "rejected professional", caller: &customer, mutate: func(in *models.QuoteCreate) { in.ProfessionalID = rejected.ID }, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validQuoteInput(pro.ID)
			tt.mutate(&input)
			_, err := svc.Create(ctx, tt.caller, input)
			requireServiceError(t, err, tt.wantCode)
		})
	}
}

func TestQuoteRespond(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewQuoteService(store, notifier, 48*time.Hour)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	other := createProfessional(t, store, "o@example.com", models.EmployeeStatusApproved)

	quote, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
	require.NoError(t, err)

	respond := models.QuoteRespond{Price: 150, Availability: "Tomorrow morning"}

	t.Run("not the owner", func(t *testing.T) {
		_, err := svc.Respond(ctx, other, quote.ID, respond)
		requireServiceError(t, err, http.StatusForbidden)

		stored, err := store.Quotes.FindByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusPending, stored.Status)
		assert.Nil(t, stored.Response)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Respond(ctx, pro, quote.ID, models.QuoteRespond{Price: 0, Availability: "x"})
		requireServiceError(t, err, http.StatusBadRequest)

		_, err = svc.Respond(ctx, pro, quote.ID, models.QuoteRespond{Price: 10})
		requireServiceError(t, err, http.StatusBadRequest)

		past := time.Now().Add(-time.Hour)
		_, err = svc.Respond(ctx, pro, quote.ID, models.QuoteRespond{Price: 10, Availability: "x", ValidUntil: &past})
		requireServiceError(t, err, http.StatusBadRequest)
	})

	t.Run("missing quote", func(t *testing.T) {
		_, err := svc.Respond(ctx, pro, 999, respond)
		requireServiceError(t, err, http.StatusNotFound)
	})

	for _, status := range []models.EmployeeStatus{models.EmployeeStatusPending, models.EmployeeStatusRejected} {
		t.Run("unapproved professional "+string(status), func(t *testing.T) {
			demoted := createProfessional(t, store, string(status)+"@example.com", models.EmployeeStatusApproved)
			pendingQuote, err := svc.Create(ctx, &customer, validQuoteInput(demoted.ID))
			require.NoError(t, err)

			employee, err := store.Employees.FindByID(ctx, demoted.ID)
			require.NoError(t, err)
			require.NoError(t, store.Employees.Update(ctx, employee, map[string]interface{}{"status": status}))

			_, err = svc.Respond(ctx, demoted, pendingQuote.ID, respond)
			requireServiceError(t, err, http.StatusForbidden)

			stored, err := store.Quotes.FindByID(ctx, pendingQuote.ID)
			require.NoError(t, err)
			assert.Equal(t, models.QuoteStatusPending, stored.Status)
			assert.Nil(t, stored.Response)
		})
	}

	t.Run("responds once", func(t *testing.T) {
		updated, err := svc.Respond(ctx, pro, quote.ID, respond)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusResponded, updated.Status)
		require.NotNil(t, updated.RespondedAt)
		require.NotNil(t, updated.Response)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), updated.Response.ValidUntil, time.Minute)
		assert.Contains(t, notifier.Types(), models.NotificationQuoteResponded)

		_, err = svc.Respond(ctx, pro, quote.ID, respond)
		requireServiceError(t, err, http.StatusConflict)

		count, err := store.Quotes.CountResponses(ctx, quote.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func respondedQuote(t *testing.T, store *repository.Store, svc *QuoteService, customer, pro Principal) *models.Quote {
	t.Helper()
	ctx := context.Background()
	quote, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
	require.NoError(t, err)
	quote, err = svc.Respond(ctx, pro, quote.ID, models.QuoteRespond{Price: 99.5, Availability: "Friday"})
	require.NoError(t, err)
	return quote
}

func TestQuoteDecisions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewQuoteService(store, notifier, 0)

	customer := createCustomer(t, store, "c@example.com")
	stranger := createCustomer(t, store, "s@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)

	t.Run("accept", func(t *testing.T) {
		quote := respondedQuote(t, store, svc, customer, pro)

		_, err := svc.Accept(ctx, stranger, quote.ID)
		requireServiceError(t, err, http.StatusForbidden)
		_, err = svc.Accept(ctx, pro, quote.ID)
		requireServiceError(t, err, http.StatusForbidden)

		accepted, err := svc.Accept(ctx, customer, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusAccepted, accepted.Status)
		assert.NotNil(t, accepted.DecidedAt)

		_, err = svc.Reject(ctx, customer, quote.ID)
		requireServiceError(t, err, http.StatusConflict)
	})

	t.Run("reject", func(t *testing.T) {
		quote := respondedQuote(t, store, svc, customer, pro)
		rejected, err := svc.Reject(ctx, customer, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusRejected, rejected.Status)
		assert.Contains(t, notifier.Types(), models.NotificationQuoteRejected)
	})

	t.Run("pending quote cannot be accepted", func(t *testing.T) {
		quote, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
		require.NoError(t, err)
		_, err = svc.Accept(ctx, customer, quote.ID)
		requireServiceError(t, err, http.StatusConflict)
	})

	t.Run("lapsed offer expires on accept", func(t *testing.T) {
		quote := respondedQuote(t, store, svc, customer, pro)

		svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.Accept(ctx, customer, quote.ID)
		requireServiceError(t, err, http.StatusConflict)

		stored, err := store.Quotes.FindByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusExpired, stored.Status)
	})
}

func TestQuoteExpireStale(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewQuoteService(store, notifier, time.Hour)

	customer := createCustomer(t, store, "c@example.com")
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)

	stale := respondedQuote(t, store, svc, customer, pro)
	pending, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
	require.NoError(t, err)

	n, err := svc.ExpireStale(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = svc.ExpireStale(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.Quotes.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusExpired, got.Status)

	got, err = store.Quotes.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusPending, got.Status)
	assert.Contains(t, notifier.Types(), models.NotificationQuoteExpired)

	n, err = svc.ExpireStale(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuoteVisibility(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	svc := NewQuoteService(store, nil, 0)

	customer := createCustomer(t, store, "c@example.com")
	stranger := createCustomer(t, store, "s@example.com")
	admin := createAdmin(t, store)
	pro := createProfessional(t, store, "p@example.com", models.EmployeeStatusApproved)
	other := createProfessional(t, store, "o@example.com", models.EmployeeStatusApproved)

	quote, err := svc.Create(ctx, &customer, validQuoteInput(pro.ID))
	require.NoError(t, err)

	for _, p := range []Principal{customer, pro, admin} {
		_, err := svc.Get(ctx, p, quote.ID)
		assert.NoError(t, err, p.Email)
	}
	for _, p := range []Principal{stranger, other} {
		_, err := svc.Get(ctx, p, quote.ID)
		requireServiceError(t, err, http.StatusForbidden)
	}

	mine, total, err := svc.ListMine(ctx, customer, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)

	incoming, total, err := svc.ListIncoming(ctx, pro, models.QuoteStatusPending, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, incoming, 1)

	_, _, err = svc.ListIncoming(ctx, customer, "", repository.Page{})
	requireServiceError(t, err, http.StatusForbidden)
}
