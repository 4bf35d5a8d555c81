package routes

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-server/middleware"
	"marketplace-server/models"
	"marketplace-server/services"
)

type EmployeeHandler struct {
	employees *services.EmployeeService
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// RegisterEmployeeRoutes registers the professional directory and the
// professional's own profile endpoints.
func RegisterEmployeeRoutes(router *gin.RouterGroup, h *EmployeeHandler, authRequired, optionalAuth gin.HandlerFunc) {
	employees := router.Group("/employees")
	{
		employees.GET("", optionalAuth, h.list)
		employees.PUT("/me", authRequired, middleware.ProfessionalMiddleware(), h.updateMe)
		employees.PUT("/me/categories", authRequired, middleware.ProfessionalMiddleware(), h.setCategories)
		employees.GET("/:id", optionalAuth, h.get)
		employees.GET("/:id/stats", optionalAuth, h.stats)
		employees.GET("/:id/recent-requests", authRequired, h.recentRequests)
	}
}

func (h *EmployeeHandler) list(c *gin.Context) {
	filter := models.EmployeeFilter{
		CategoryID: queryUint(c, "category_id"),
		Area:       c.Query("area"),
		Search:     c.Query("search"),
		Status:     models.EmployeeStatus(c.Query("status")),
	}
	p, page := pageFrom(c)

	employees, total, err := h.employees.List(c.Request.Context(), optionalPrincipal(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, employees, p, total)
}

func (h *EmployeeHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), optionalPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (h *EmployeeHandler) stats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	stats, err := h.employees.Stats(c.Request.Context(), optionalPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *EmployeeHandler) recentRequests(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	quotes, err := h.employees.RecentRequests(c.Request.Context(), principal(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quotes)
}

func (h *EmployeeHandler) updateMe(c *gin.Context) {
	var req models.EmployeeUpdate
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.UpdateMe(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (h *EmployeeHandler) setCategories(c *gin.Context) {
	var req models.EmployeeCategoriesUpdate
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.SetCategories(c.Request.Context(), principal(c), req.CategoryIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}
