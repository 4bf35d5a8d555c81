package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketplace-server/config"
	"marketplace-server/database"
	"marketplace-server/models"
	"marketplace-server/repository"
	"marketplace-server/utils"
)

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	config.AppConfig = &config.Config{
		Env: "test",
		JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	}

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:          "sqlite",
		URL:             "file::memory:",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		LogLevel:        "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.SeedDefaults(db, config.AdminConfig{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

func createCustomer(t *testing.T, store *repository.Store, email string) Principal {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{Name: "Customer " + email, Email: email, PasswordHash: hash, Phone: "+15550001111"}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return Principal{ID: user.ID, Email: user.Email, Role: models.RoleCustomer}
}

func createAdmin(t *testing.T, store *repository.Store) Principal {
	t.Helper()
	user := &models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return Principal{ID: user.ID, Email: user.Email, Role: models.RoleAdmin}
}

func createProfessional(t *testing.T, store *repository.Store, email string, status models.EmployeeStatus) Principal {
	t.Helper()
	employee := &models.Employee{
		Name:         "Pro " + email,
		Email:        email,
		PasswordHash: "x",
		Phone:        "+15550002222",
		Area:         "Downtown",
		Status:       status,
	}
	require.NoError(t, store.Employees.Create(context.Background(), employee))
	return Principal{ID: employee.ID, Email: employee.Email, Role: models.RoleProfessional}
}

type pushed struct {
	Key   string
	Event string
	Data  interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	online map[string]bool
	events []pushed
}

func newFakePusher(online ...string) *fakePusher {
	p := &fakePusher{online: map[string]bool{}}
	for _, key := range online {
		p.online[key] = true
	}
	return p
}

func (p *fakePusher) Push(key, event string, data interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[key] {
		return false
	}
	p.events = append(p.events, pushed{Key: key, Event: event, Data: data})
	return true
}

func (p *fakePusher) Events() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.events...)
}

type sentSMS struct {
	To   string
	Body string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return fmt.Sprintf("SM%d", len(f.sent)), nil
}

type fakeImageStore struct {
	uploads []string
}

func (f *fakeImageStore) Upload(_ context.Context, file io.Reader, filename, folder string) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://images.example.com/%s/%s", folder, filename)
	f.uploads = append(f.uploads, url)
	return url, nil
}

// recordingNotifier captures notifications without touching the database.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		types = append(types, n.Type)
	}
	return types
}

func requireServiceError(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	se, ok := AsError(err)
	require.True(t, ok, "expected a service error, got %v", err)
	require.Equal(t, status, se.Status, se.Message)
}
