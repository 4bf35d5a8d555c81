package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

const maxCategoryImageSize = 5 << 20

type AdminHandler struct {
	admin      *services.AdminService
	categories *services.CategoryService
	reviews    *services.ReviewService
	complaints *services.ComplaintService
}

func NewAdminHandler(admin *services.AdminService, categories *services.CategoryService, reviews *services.ReviewService, complaints *services.ComplaintService) *AdminHandler {
	return &AdminHandler{admin: admin, categories: categories, reviews: reviews, complaints: complaints}
}

// RegisterAdminRoutes registers the admin dashboard. The group must be
// mounted behind AuthMiddleware and AdminMiddleware.
func RegisterAdminRoutes(router *gin.RouterGroup, h *AdminHandler) {
	admin := router.Group("/admin")
	{
		admin.GET("/stats", h.stats)
		admin.GET("/activity", h.activity)

		admin.GET("/approvals", h.approvals)
		admin.POST("/approvals/:id/approve", h.approve)
		admin.POST("/approvals/:id/reject", h.reject)

		admin.GET("/categories", h.listCategories)
		admin.POST("/categories", h.createCategory)
		admin.POST("/categories/:id/image", h.uploadCategoryImage)

		admin.GET("/users", h.users)

		admin.GET("/reviews", h.listReviews)
		admin.DELETE("/reviews/:id", h.deleteReview)

		admin.GET("/complaints", h.listComplaints)
		admin.PUT("/complaints/:id/status", h.updateComplaintStatus)
	}
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *AdminHandler) activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.admin.Activity(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

func (h *AdminHandler) approvals(c *gin.Context) {
	p, page := pageFrom(c)
	items, total, err := h.admin.Approvals(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *AdminHandler) approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	employee, err := h.admin.Approve(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (h *AdminHandler) reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ApprovalDecision
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	employee, err := h.admin.Reject(c.Request.Context(), principal(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, employee)
}

func (h *AdminHandler) listCategories(c *gin.Context) {
	items, err := h.categories.ListWithCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

func (h *AdminHandler) createCategory(c *gin.Context) {
	var req models.CategoryCreate
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, category)
}

func (h *AdminHandler) uploadCategoryImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "image file is required", nil))
		return
	}
	if header.Size > maxCategoryImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody("PAYLOAD_TOO_LARGE", "Image exceeds 5MB", nil))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	category, err := h.categories.UploadImage(c.Request.Context(), id, file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}

func (h *AdminHandler) users(c *gin.Context) {
	p, page := pageFrom(c)
	items, total, err := h.admin.Users(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *AdminHandler) listReviews(c *gin.Context) {
	p, page := pageFrom(c)
	items, total, err := h.admin.Reviews(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *AdminHandler) deleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "deleted": true})
}

func (h *AdminHandler) listComplaints(c *gin.Context) {
	p, page := pageFrom(c)
	status := models.ComplaintStatus(c.Query("status"))
	items, total, err := h.complaints.ListAll(c.Request.Context(), status, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *AdminHandler) updateComplaintStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ComplaintStatusUpdate
	if !bindJSON(c, &req) {
		return
	}
	complaint, err := h.complaints.UpdateStatus(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, complaint)
}
