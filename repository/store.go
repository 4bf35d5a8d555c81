// Package repository holds every query the application issues. Services
// compose repositories and never build gorm queries themselves.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the per-entity repositories over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Employees     *EmployeeRepository
	Categories    *CategoryRepository
	Reviews       *ReviewRepository
	Quotes        *QuoteRepository
	Chats         *ChatRepository
	Notifications *NotificationRepository
	Complaints    *ComplaintRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         &UserRepository{db: db},
		Employees:     &EmployeeRepository{db: db},
		Categories:    &CategoryRepository{db: db},
		Reviews:       &ReviewRepository{db: db},
		Quotes:        &QuoteRepository{db: db},
		Chats:         &ChatRepository{db: db},
		Notifications: &NotificationRepository{db: db},
		Complaints:    &ComplaintRepository{db: db},
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
// Returning an error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Page is the limit/offset pair every list query accepts.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}
