package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"marketplace-server/models"
	"marketplace-server/repository"
	"marketplace-server/services"
	"marketplace-server/types"
	"marketplace-server/utils"
)

const principalKey = "principal"

// abort writes the standard error envelope and stops the chain.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware requires a valid bearer token whose account still exists.
func AuthMiddleware(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			log.Printf("🔍 AuthMiddleware: missing bearer token on %s %s", c.Request.Method, c.Request.URL.Path)
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header with a Bearer token is required")
			return
		}
		authenticate(c, store, token)
	}
}

// WebSocketAuthMiddleware reads the token from the ?token= query parameter,
// since browsers cannot set headers on a websocket upgrade.
func WebSocketAuthMiddleware(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			log.Printf("🔌 WebSocketAuthMiddleware: no token in query")
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
			return
		}
		authenticate(c, store, token)
	}
}

func authenticate(c *gin.Context, store *repository.Store, token string) {
	claims, err := utils.VerifyToken(token)
	if err != nil {
		log.Printf("🔍 AuthMiddleware: token rejected: %v", err)
		abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is invalid or expired")
		return
	}

	if err := accountExists(c, store, claims); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Account associated with token not found")
			return
		}
		log.Printf("❌ AuthMiddleware: account lookup failed: %v", err)
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	setPrincipal(c, claims)
	c.Next()
}

func accountExists(c *gin.Context, store *repository.Store, claims *types.Claims) error {
	ctx := c.Request.Context()
	if models.UserRole(claims.Role) == models.RoleProfessional {
		_, err := store.Employees.FindByID(ctx, claims.UserID)
		return err
	}
	_, err := store.Users.FindByID(ctx, claims.UserID)
	return err
}

func setPrincipal(c *gin.Context, claims *types.Claims) {
	p := services.Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  models.UserRole(claims.Role),
	}
	c.Set(principalKey, p)
	c.Set("user_id", p.ID)
	c.Set("role", string(p.Role))
}

// OptionalAuthMiddleware attaches the caller when a valid token for an
// existing account is sent. Anything else continues as a guest.
func OptionalAuthMiddleware(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := utils.VerifyToken(token)
		if err != nil {
			c.Next()
			return
		}
		if err := accountExists(c, store, claims); err != nil {
			log.Printf("🔍 OptionalAuthMiddleware: treating %s %d as guest: %v", claims.Role, claims.UserID, err)
			c.Next()
			return
		}
		setPrincipal(c, claims)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return requireRole(models.RoleAdmin, "Admin access required")
}

// ProfessionalMiddleware must run after AuthMiddleware.
func ProfessionalMiddleware() gin.HandlerFunc {
	return requireRole(models.RoleProfessional, "Professional access required")
}

func requireRole(role models.UserRole, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if p.Role != role {
			log.Printf("🔍 %s %d denied on %s", p.Role, p.ID, c.FullPath())
			abort(c, http.StatusForbidden, "FORBIDDEN", message)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}
