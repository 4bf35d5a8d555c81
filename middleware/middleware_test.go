package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-server/config"
	"marketplace-server/database"
	"marketplace-server/models"
	"marketplace-server/repository"
	"marketplace-server/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupStore(t *testing.T) *repository.Store {
	t.Helper()
	config.AppConfig = &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret", ExpiryHours: 1}}

	db, err := database.Initialize(config.DatabaseConfig{
		Driver: "sqlite", URL: "file::memory:", MaxIdleConns: 1, MaxOpenConns: 1, LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

func tokenFor(t *testing.T, id uint, role models.UserRole) string {
	t.Helper()
	token, _, err := utils.GenerateToken(id, "x@example.com", string(role))
	require.NoError(t, err)
	return token
}

func whoAmI(c *gin.Context) {
	p, ok := GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
}

func TestAuthMiddleware(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user := &models.User{Name: "U", Email: "u@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(ctx, user))
	admin := &models.User{Name: "A", Email: "a@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, store.Users.Create(ctx, admin))
	pro := &models.Employee{Name: "P", Email: "p@example.com", PasswordHash: "x"}
	require.NoError(t, store.Employees.Create(ctx, pro))

	r := gin.New()
	r.GET("/me", AuthMiddleware(store), whoAmI)
	r.GET("/admin", AuthMiddleware(store), AdminMiddleware(), whoAmI)
	r.GET("/pro", AuthMiddleware(store), ProfessionalMiddleware(), whoAmI)
	r.GET("/ws", WebSocketAuthMiddleware(store), whoAmI)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "no header", path: "/me", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", path: "/me", header: "Token abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer abc", wantStatus: http.StatusUnauthorized},
		{name: "customer", path: "/me", header: "Bearer " + tokenFor(t, user.ID, models.RoleCustomer), wantStatus: http.StatusOK},
		{name: "deleted account", path: "/me", header: "Bearer " + tokenFor(t, 999, models.RoleCustomer), wantStatus: http.StatusUnauthorized},
		{name: "professional account", path: "/me", header: "Bearer " + tokenFor(t, pro.ID, models.RoleProfessional), wantStatus: http.StatusOK},
		{name: "customer on admin route", path: "/admin", header: "Bearer " + tokenFor(t, user.ID, models.RoleCustomer), wantStatus: http.StatusForbidden},
		{name: "admin on admin route", path: "/admin", header: "Bearer " + tokenFor(t, admin.ID, models.RoleAdmin), wantStatus: http.StatusOK},
		{name: "customer on professional route", path: "/pro", header: "Bearer " + tokenFor(t, user.ID, models.RoleCustomer), wantStatus: http.StatusForbidden},
		{name: "professional route", path: "/pro", header: "Bearer " + tokenFor(t, pro.ID, models.RoleProfessional), wantStatus: http.StatusOK},
		{name: "ws without token", path: "/ws", wantStatus: http.StatusUnauthorized},
		{name: "ws with token", path: "/ws?token=" + tokenFor(t, user.ID, models.RoleCustomer), wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if w.Code != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	store := setupStore(t)
	user := &models.User{Name: "Opt", Email: "opt@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(context.Background(), user))

	r := gin.New()
	r.GET("/maybe", OptionalAuthMiddleware(store), whoAmI)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "anonymous"},
		{"invalid token", "Bearer nope", "anonymous"},
		{"deleted account", "Bearer " + tokenFor(t, 4242, models.RoleCustomer), "anonymous"},
		{"missing professional", "Bearer " + tokenFor(t, user.ID, models.RoleProfessional), "anonymous"},
		{"existing customer", "Bearer " + tokenFor(t, user.ID, models.RoleCustomer), fmt.Sprintf(`"id":%d`, user.ID)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := map[int]int{}
	for i := 0; i < 7; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		codes[w.Code]++
	}
	assert.Equal(t, 5, codes[http.StatusOK])
	assert.Equal(t, 2, codes[http.StatusTooManyRequests])

	// reads use their own bucket
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2, rl.Len())
	assert.Zero(t, rl.Cleanup(time.Hour))
	assert.Equal(t, 2, rl.Cleanup(-time.Second))
	assert.Zero(t, rl.Len())
}

func TestInputValidationMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(InputValidationMiddleware())
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.ContentLength = maxBodyBytes + 1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestLoggerAndHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), SecurityHeadersMiddleware(), CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
