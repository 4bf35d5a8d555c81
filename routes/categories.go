package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/services"
)

type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// RegisterCategoryRoutes registers the public category catalogue.
func RegisterCategoryRoutes(router *gin.RouterGroup, h *CategoryHandler) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.list)
		categories.GET("/:id", h.get)
	}
}

func (h *CategoryHandler) list(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

func (h *CategoryHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}
