package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"marketplace-server/models"
	"marketplace-server/repository"
)

const DefaultQuoteValidity = 7 * 24 * time.Hour

type QuoteService struct {
	store    *repository.Store
	notifier Notifier
	validity time.Duration
	now      func() time.Time
}

// NewQuoteService builds the quote lifecycle service. validity is the offer
// lifetime used when a professional responds without valid_until.
func NewQuoteService(store *repository.Store, notifier Notifier, validity time.Duration) *QuoteService {
	if validity <= 0 {
		validity = DefaultQuoteValidity
	}
	return &QuoteService{store: store, notifier: notifier, validity: validity, now: time.Now}
}

// Create submits a quote request. customer is nil for guests, who must then
// supply both a name and an email.
func (s *QuoteService) Create(ctx context.Context, customer *Principal, input models.QuoteCreate) (*models.Quote, error) {
	if customer != nil && customer.IsProfessional() {
		return nil, ErrForbidden("Professionals cannot request quotes")
	}

	quote := &models.Quote{
		EmployeeID:     input.ProfessionalID,
		CategoryID:     input.CategoryID,
		Urgency:        input.Urgency,
		ResponseMethod: input.ResponseMethod,
		Description:    strings.TrimSpace(input.Description),
		Status:         models.QuoteStatusPending,
	}

	if customer != nil {
		id := customer.ID
		quote.CustomerID = &id
	} else {
		quote.GuestName = strings.TrimSpace(input.GuestName)
		quote.GuestEmail = strings.TrimSpace(input.GuestEmail)
		quote.GuestPhone = strings.TrimSpace(input.GuestPhone)
		if quote.GuestName == "" || quote.GuestEmail == "" {
			return nil, ErrValidation("guest_name and guest_email are required when not signed in")
		}
		if _, err := mail.ParseAddress(quote.GuestEmail); err != nil {
			return nil, ErrValidation("guest_email is not a valid email address")
		}
	}

	if err := validateQuoteInput(input); err != nil {
		return nil, err
	}
	for _, a := range input.Answers {
		quote.Answers = append(quote.Answers, models.QuoteAnswer{
			Question: strings.TrimSpace(a.Question),
			Answer:   strings.TrimSpace(a.Answer),
		})
	}
	if quote.CategoryID == 0 {
		quote.CategoryID = models.DefaultCategoryID
	}

	employee, err := s.store.Employees.FindByID(ctx, quote.EmployeeID)
	if err != nil {
		return nil, notFoundOr(err, "professional")
	}
	if !employee.IsApproved() {
		return nil, ErrNotFound("professional")
	}
	if _, err := s.store.Categories.FindByID(ctx, quote.CategoryID); err != nil {
		return nil, notFoundOr(err, "category")
	}

	if err := s.store.Quotes.Create(ctx, quote); err != nil {
		return nil, err
	}
	log.Printf("✅ Quote %d created for employee %d", quote.ID, employee.ID)

	s.notify(ctx, &models.Notification{
		RecipientType: models.RecipientEmployee,
		RecipientID:   employee.ID,
		Type:          models.NotificationQuoteReceived,
		Title:         "New quote request",
		Content:       fmt.Sprintf("You received a new %s urgency request from %s", quote.Urgency, requesterName(quote, customer)),
		Link:          fmt.Sprintf("/quotes/%d", quote.ID),
		Channels:      []string{models.ChannelInApp, models.ChannelPush},
	})

	return quote, nil
}

func validateQuoteInput(input models.QuoteCreate) error {
	var missing []string
	if input.ProfessionalID == 0 {
		missing = append(missing, "professional_id")
	}
	if len(input.Answers) == 0 {
		missing = append(missing, "answers")
	}
	if input.Urgency == "" {
		missing = append(missing, "urgency")
	}
	if input.ResponseMethod == "" {
		missing = append(missing, "response_method")
	}
	if len(missing) > 0 {
		return ErrValidation("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !input.Urgency.Valid() {
		return ErrValidation("urgency must be one of low, medium, high, urgent")
	}
	if !input.ResponseMethod.Valid() {
		return ErrValidation("response_method must be one of phone, email, chat")
	}
	for i, a := range input.Answers {
		if strings.TrimSpace(a.Question) == "" {
			return ErrValidation("answers[%d].question is required", i)
		}
	}
	return nil
}

func requesterName(q *models.Quote, customer *Principal) string {
	if q.GuestName != "" {
		return q.GuestName
	}
	if customer != nil {
		return customer.Email
	}
	return "a customer"
}

// Respond records the professional's offer and moves the quote to
// responded. Both writes share one transaction.
func (s *QuoteService) Respond(ctx context.Context, p Principal, quoteID uint, input models.QuoteRespond) (*models.Quote, error) {
	if !p.IsProfessional() {
		return nil, ErrForbidden("Only professionals can respond to quotes")
	}
	if input.Price <= 0 {
		return nil, ErrValidation("price must be greater than zero")
	}
	if strings.TrimSpace(input.Availability) == "" {
		return nil, ErrValidation("availability is required")
	}

	now := s.now()
	validUntil := now.Add(s.validity)
	if input.ValidUntil != nil {
		if !input.ValidUntil.After(now) {
			return nil, ErrValidation("valid_until must be in the future")
		}
		validUntil = *input.ValidUntil
	}

	responder, err := s.store.Employees.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "professional")
	}
	if !responder.IsApproved() {
		return nil, ErrForbidden("Your account must be approved before responding to quotes")
	}

	var quote *models.Quote
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		quote, err = tx.Quotes.FindByID(ctx, quoteID)
		if err != nil {
			return notFoundOr(err, "quote")
		}
		if quote.EmployeeID != p.ID {
			return ErrForbidden("You can only respond to quotes assigned to you")
		}
		if quote.Status != models.QuoteStatusPending {
			return ErrConflict(fmt.Sprintf("Quote is %s and can no longer be responded to", quote.Status))
		}

		response := &models.QuoteResponse{
			QuoteID:      quote.ID,
			EmployeeID:   p.ID,
			Price:        input.Price,
			Availability: strings.TrimSpace(input.Availability),
			Notes:        strings.TrimSpace(input.Notes),
			ValidUntil:   validUntil,
		}
		if err := tx.Quotes.CreateResponse(ctx, response); err != nil {
			return err
		}

		n, err := tx.Quotes.Transition(ctx, quote.ID, models.QuoteStatusPending, models.QuoteStatusResponded,
			map[string]interface{}{"responded_at": now})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrConflict("Quote was updated concurrently")
		}

		quote.Status = models.QuoteStatusResponded
		quote.RespondedAt = &now
		quote.Response = response
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Quote %d responded by employee %d", quote.ID, p.ID)

	if quote.CustomerID != nil {
		channels := []string{models.ChannelInApp, models.ChannelPush}
		if quote.ResponseMethod == models.ResponseMethodPhone {
			channels = append(channels, models.ChannelSMS)
		}
		s.notify(ctx, &models.Notification{
			RecipientType: models.RecipientUser,
			RecipientID:   *quote.CustomerID,
			Type:          models.NotificationQuoteResponded,
			Title:         "Your quote has a response",
			Content:       fmt.Sprintf("Offer of %.2f, valid until %s", input.Price, validUntil.Format("2006-01-02")),
			Link:          fmt.Sprintf("/quotes/%d", quote.ID),
			Channels:      channels,
		})
	}

	return quote, nil
}

// Accept moves a responded quote to accepted.
func (s *QuoteService) Accept(ctx context.Context, p Principal, quoteID uint) (*models.Quote, error) {
	return s.decide(ctx, p, quoteID, models.QuoteStatusAccepted)
}

// Reject moves a responded quote to rejected.
func (s *QuoteService) Reject(ctx context.Context, p Principal, quoteID uint) (*models.Quote, error) {
	return s.decide(ctx, p, quoteID, models.QuoteStatusRejected)
}

func (s *QuoteService) decide(ctx context.Context, p Principal, quoteID uint, to models.QuoteStatus) (*models.Quote, error) {
	quote, err := s.store.Quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, notFoundOr(err, "quote")
	}
	if !p.IsCustomer() || quote.CustomerID == nil || *quote.CustomerID != p.ID {
		return nil, ErrForbidden("You can only decide on your own quotes")
	}
	if !models.CanTransition(quote.Status, to) {
		return nil, ErrConflict(fmt.Sprintf("Quote is %s and cannot be %s", quote.Status, to))
	}

	now := s.now()
	if to == models.QuoteStatusAccepted && quote.Response != nil && !quote.Response.ValidUntil.After(now) {
		if _, err := s.expire(ctx, quote); err != nil {
			return nil, err
		}
		return nil, ErrConflict("The offer has expired")
	}

	n, err := s.store.Quotes.Transition(ctx, quote.ID, models.QuoteStatusResponded, to,
		map[string]interface{}{"decided_at": now})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrConflict("Quote was updated concurrently")
	}
	quote.Status = to
	quote.DecidedAt = &now

	log.Printf("✅ Quote %d %s by user %d", quote.ID, to, p.ID)

	notificationType, title := models.NotificationQuoteAccepted, "Your offer was accepted"
	if to == models.QuoteStatusRejected {
		notificationType, title = models.NotificationQuoteRejected, "Your offer was declined"
	}
	s.notify(ctx, &models.Notification{
		RecipientType: models.RecipientEmployee,
		RecipientID:   quote.EmployeeID,
		Type:          notificationType,
		Title:         title,
		Content:       fmt.Sprintf("Quote #%d is now %s", quote.ID, to),
		Link:          fmt.Sprintf("/quotes/%d", quote.ID),
		Channels:      []string{models.ChannelInApp, models.ChannelPush},
	})

	return quote, nil
}

// ExpireStale moves every responded quote whose offer has lapsed to expired
// and returns how many were changed.
func (s *QuoteService) ExpireStale(ctx context.Context, batch int) (int, error) {
	quotes, err := s.store.Quotes.FindStaleResponded(ctx, s.now(), batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range quotes {
		ok, err := s.expire(ctx, &quotes[i])
		if err != nil {
			log.Printf("❌ Failed to expire quote %d: %v", quotes[i].ID, err)
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

func (s *QuoteService) expire(ctx context.Context, quote *models.Quote) (bool, error) {
	n, err := s.store.Quotes.Transition(ctx, quote.ID, models.QuoteStatusResponded, models.QuoteStatusExpired, nil)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	quote.Status = models.QuoteStatusExpired

	if quote.CustomerID != nil {
		s.notify(ctx, &models.Notification{
			RecipientType: models.RecipientUser,
			RecipientID:   *quote.CustomerID,
			Type:          models.NotificationQuoteExpired,
			Title:         "A quote offer expired",
			Content:       fmt.Sprintf("The offer for quote #%d is no longer valid", quote.ID),
			Link:          fmt.Sprintf("/quotes/%d", quote.ID),
			Channels:      []string{models.ChannelInApp, models.ChannelPush},
		})
	}
	return true, nil
}

// ListMine returns the calling customer's quotes.
func (s *QuoteService) ListMine(ctx context.Context, p Principal, page repository.Page) ([]models.Quote, int64, error) {
	if !p.IsCustomer() {
		return nil, 0, ErrForbidden("Only customers have submitted quotes")
	}
	return s.store.Quotes.ListByCustomer(ctx, p.ID, page)
}

// ListIncoming returns the quotes addressed to the calling professional.
func (s *QuoteService) ListIncoming(ctx context.Context, p Principal, status models.QuoteStatus, page repository.Page) ([]models.Quote, int64, error) {
	if !p.IsProfessional() {
		return nil, 0, ErrForbidden("Only professionals receive quotes")
	}
	return s.store.Quotes.ListByEmployee(ctx, p.ID, status, page)
}

// Get returns a quote to its customer, its professional, or an admin.
func (s *QuoteService) Get(ctx context.Context, p Principal, id uint) (*models.Quote, error) {
	quote, err := s.store.Quotes.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "quote")
	}

	switch {
	case p.IsAdmin():
	case p.IsProfessional() && quote.EmployeeID == p.ID:
	case p.IsCustomer() && quote.CustomerID != nil && *quote.CustomerID == p.ID:
	default:
		return nil, ErrForbidden("You do not have access to this quote")
	}
	return quote, nil
}

func (s *QuoteService) notify(ctx context.Context, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("❌ Failed to store %s notification: %v", n.Type, err)
	}
}
