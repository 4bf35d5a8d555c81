package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

type AuthHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewAuthHandler(auth *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// RegisterAuthRoutes registers customer and professional authentication.
func RegisterAuthRoutes(router *gin.RouterGroup, h *AuthHandler, authRequired gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.GET("/profile", authRequired, h.profile)
		auth.PUT("/profile", authRequired, h.updateProfile)

		auth.POST("/professional/register", h.registerProfessional)
		auth.POST("/professional/login", h.loginProfessional)
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var req models.UserRegister
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, res)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

func (h *AuthHandler) profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, profile)
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	var req models.UserUpdate
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

func (h *AuthHandler) registerProfessional(c *gin.Context) {
	var req models.EmployeeRegister
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.RegisterProfessional(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, res)
}

func (h *AuthHandler) loginProfessional(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.LoginProfessional(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}
