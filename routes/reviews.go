package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterReviewRoutes registers review browsing and the customer review
// lifecycle. Writes recompute the professional's rating aggregates.
func RegisterReviewRoutes(router *gin.RouterGroup, h *ReviewHandler, authRequired gin.HandlerFunc) {
	reviews := router.Group("/reviews")
	{
		reviews.GET("", h.list)
		reviews.GET("/:id", h.get)
		reviews.POST("", authRequired, h.create)
		reviews.PUT("/:id", authRequired, h.update)
		reviews.DELETE("/:id", authRequired, h.delete)
	}
}

func (h *ReviewHandler) list(c *gin.Context) {
	p, page := pageFrom(c)
	reviews, total, err := h.reviews.List(c.Request.Context(), queryUint(c, "employee_id"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, reviews, p, total)
}

func (h *ReviewHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, review)
}

func (h *ReviewHandler) create(c *gin.Context) {
	var req models.ReviewCreate
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, review)
}

func (h *ReviewHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ReviewUpdate
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, review)
}

func (h *ReviewHandler) delete(c *gin.Context) {
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
