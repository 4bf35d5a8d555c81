package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marketplace-server/models"
	"marketplace-server/repository"
)

const defaultActivityLimit = 20

type AdminService struct {
	store    *repository.Store
	notifier Notifier
	now      func() time.Time
}

func NewAdminService(store *repository.Store, notifier Notifier) *AdminService {
	return &AdminService{store: store, notifier: notifier, now: time.Now}
}

// Stats gathers the dashboard counters concurrently.
func (s *AdminService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.store.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProfessionals, err = s.store.Employees.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PendingApprovals, err = s.store.Employees.Count(gctx, models.EmployeeStatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.QuotesThisMonth, err = s.store.Quotes.CountSince(gctx, monthStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Activity merges the latest registrations, quotes and reviews into a
// single feed, newest first.
func (s *AdminService) Activity(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}

	var (
		users   []models.User
		quotes  []models.Quote
		reviews []models.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.store.Users.Recent(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		quotes, err = s.store.Quotes.Recent(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = s.store.Reviews.Recent(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.ActivityItem, 0, len(users)+len(quotes)+len(reviews))
	for _, u := range users {
		items = append(items, models.ActivityItem{
			Kind:        models.ActivityUserRegistered,
			ReferenceID: u.ID,
			Summary:     fmt.Sprintf("%s registered", u.Name),
			Timestamp:   u.CreatedAt,
		})
	}
	for _, q := range quotes {
		target := fmt.Sprintf("professional #%d", q.EmployeeID)
		if q.Employee != nil {
			target = q.Employee.Name
		}
		items = append(items, models.ActivityItem{
			Kind:        models.ActivityQuoteCreated,
			ReferenceID: q.ID,
			Summary:     fmt.Sprintf("New quote request for %s", target),
			Timestamp:   q.CreatedAt,
		})
	}
	for _, r := range reviews {
		target := fmt.Sprintf("professional #%d", r.EmployeeID)
		if r.Employee != nil {
			target = r.Employee.Name
		}
		items = append(items, models.ActivityItem{
			Kind:        models.ActivityReviewPosted,
			ReferenceID: r.ID,
			Summary:     fmt.Sprintf("%d-star review for %s", r.Rate, target),
			Timestamp:   r.CreatedAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Approvals lists professionals waiting for review, oldest first.
func (s *AdminService) Approvals(ctx context.Context, page repository.Page) ([]models.Employee, int64, error) {
	return s.store.Employees.ListPending(ctx, page)
}

func (s *AdminService) Approve(ctx context.Context, admin Principal, employeeID uint) (*models.Employee, error) {
	return s.decide(ctx, admin, employeeID, models.EmployeeStatusApproved, "")
}

func (s *AdminService) Reject(ctx context.Context, admin Principal, employeeID uint, reason string) (*models.Employee, error) {
	return s.decide(ctx, admin, employeeID, models.EmployeeStatusRejected, strings.TrimSpace(reason))
}

func (s *AdminService) decide(ctx context.Context, admin Principal, employeeID uint, status models.EmployeeStatus, reason string) (*models.Employee, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden("Admin access required")
	}
	if _, err := s.store.Employees.FindByID(ctx, employeeID); err != nil {
		return nil, notFoundOr(err, "professional")
	}

	n, err := s.store.Employees.SetApproval(ctx, employeeID, status, admin.ID, reason, s.now())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrConflict("Professional has already been reviewed")
	}

	employee, err := s.store.Employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Employee %d %s by admin %d", employeeID, status, admin.ID)

	content := "Your professional account has been approved. You can now receive quote requests."
	if status == models.EmployeeStatusRejected {
		content = "Your professional account application was not approved."
		if reason != "" {
			content += " Reason: " + reason
		}
	}
	if s.notifier != nil {
		err := s.notifier.Notify(ctx, &models.Notification{
			RecipientType: models.RecipientEmployee,
			RecipientID:   employeeID,
			Type:          models.NotificationApproval,
			Title:         "Account review complete",
			Content:       content,
			Channels:      []string{models.ChannelInApp, models.ChannelPush, models.ChannelSMS},
		})
		if err != nil {
			log.Printf("❌ Failed to notify employee %d about approval: %v", employeeID, err)
		}
	}
	return employee, nil
}

func (s *AdminService) Users(ctx context.Context, page repository.Page) ([]models.UserWithQuoteCount, int64, error) {
	return s.store.Users.ListWithQuoteCounts(ctx, page)
}

func (s *AdminService) Reviews(ctx context.Context, page repository.Page) ([]models.Review, int64, error) {
	return s.store.Reviews.List(ctx, 0, page)
}
