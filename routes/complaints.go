package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

type ComplaintHandler struct {
	complaints *services.ComplaintService
}

func NewComplaintHandler(complaints *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

func RegisterComplaintRoutes(router *gin.RouterGroup, h *ComplaintHandler) {
	complaints := router.Group("/complaints")
	{
		complaints.GET("", h.listMine)
		complaints.POST("", h.create)
		complaints.GET("/:id", h.get)
		complaints.PUT("/:id", h.update)
	}
}

func (h *ComplaintHandler) listMine(c *gin.Context) {
	p, page := pageFrom(c)
	items, total, err := h.complaints.ListMine(c.Request.Context(), principal(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, p, total)
}

func (h *ComplaintHandler) create(c *gin.Context) {
	var req models.ComplaintCreate
	if !bindJSON(c, &req) {
		return
	}
	complaint, err := h.complaints.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, complaint)
}

func (h *ComplaintHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	complaint, err := h.complaints.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, complaint)
}

func (h *ComplaintHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.ComplaintUpdate
	if !bindJSON(c, &req) {
		return
	}
	complaint, err := h.complaints.Update(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, complaint)
}
