package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-server/middleware"
	"marketplace-server/models"
	"marketplace-server/repository"
	"marketplace-server/services"
	ws "marketplace-server/websocket"
)

// Dependencies is everything the router needs from main.
type Dependencies struct {
	Store          *repository.Store
	Hub            *ws.Hub
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string

	Auth          *services.AuthService
	Users         *services.UserService
	Categories    *services.CategoryService
	Employees     *services.EmployeeService
	Reviews       *services.ReviewService
	Quotes        *services.QuoteService
	Chats         *services.ChatService
	Notifications *services.NotificationService
	Complaints    *services.ComplaintService
	Admin         *services.AdminService
}

// SetupRouter builds the engine with the middleware stack, /health, the
// websocket endpoint and every /api route group.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter()
	}

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware(limiter))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Marketplace server is running",
			"time":    time.Now().UTC(),
		})
	})

	authRequired := middleware.AuthMiddleware(deps.Store)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.Store)

	api := router.Group("/api")
	{
		if deps.Hub != nil {
			api.GET("/ws", middleware.WebSocketAuthMiddleware(deps.Store), serveWebSocket(deps.Hub))
		}

		RegisterAuthRoutes(api, NewAuthHandler(deps.Auth, deps.Users), authRequired)
		RegisterCategoryRoutes(api, NewCategoryHandler(deps.Categories))
		RegisterEmployeeRoutes(api, NewEmployeeHandler(deps.Employees), authRequired, optionalAuth)
		RegisterReviewRoutes(api, NewReviewHandler(deps.Reviews), authRequired)
		RegisterQuoteRoutes(api, NewQuoteHandler(deps.Quotes), authRequired, optionalAuth)

		protected := api.Group("")
		protected.Use(authRequired)
		{
			RegisterChatRoutes(protected, NewChatHandler(deps.Chats))
			RegisterNotificationRoutes(protected, NewNotificationHandler(deps.Notifications))
			RegisterComplaintRoutes(protected, NewComplaintHandler(deps.Complaints))
		}

		adminGroup := api.Group("")
		adminGroup.Use(authRequired, middleware.AdminMiddleware())
		RegisterAdminRoutes(adminGroup, NewAdminHandler(deps.Admin, deps.Categories, deps.Reviews, deps.Complaints))
	}

	return router
}

// serveWebSocket upgrades an authenticated caller and registers the
// connection under its recipient key.
func serveWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		key := services.RecipientKey(models.RecipientTypeFor(p.Role), p.ID)
		ws.ServeWebSocket(hub, c.Writer, c.Request, key)
	}
}
