package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace-server/middleware"
	"marketplace-server/models"
	"marketplace-server/services"
)

type QuoteHandler struct {
	quotes *services.QuoteService
}

func NewQuoteHandler(quotes *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// RegisterQuoteRoutes registers the quote lifecycle. Guests may submit
// quotes; everything else needs an authenticated caller.
func RegisterQuoteRoutes(router *gin.RouterGroup, h *QuoteHandler, authRequired, optionalAuth gin.HandlerFunc) {
	quotes := router.Group("/quotes")
	{
		quotes.POST("", optionalAuth, h.create)
		quotes.GET("/my", authRequired, h.listMine)
		quotes.GET("/incoming", authRequired, middleware.ProfessionalMiddleware(), h.listIncoming)
		quotes.GET("/:id", authRequired, h.get)
		quotes.POST("/:id/respond", authRequired, middleware.ProfessionalMiddleware(), h.respond)
		quotes.POST("/:id/accept", authRequired, h.accept)
		quotes.POST("/:id/reject", authRequired, h.reject)
	}
}

func (h *QuoteHandler) create(c *gin.Context) {
	var req models.QuoteCreate
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), optionalPrincipal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, quote)
}

func (h *QuoteHandler) listMine(c *gin.Context) {
	p, page := pageFrom(c)
	quotes, total, err := h.quotes.ListMine(c.Request.Context(), principal(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, quotes, p, total)
}

func (h *QuoteHandler) listIncoming(c *gin.Context) {
	p, page := pageFrom(c)
	status := models.QuoteStatus(c.Query("status"))
	quotes, total, err := h.quotes.ListIncoming(c.Request.Context(), principal(c), status, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, quotes, p, total)
}

func (h *QuoteHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quote)
}

func (h *QuoteHandler) respond(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.QuoteRespond
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quotes.Respond(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quote)
}

func (h *QuoteHandler) accept(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Accept(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quote)
}

func (h *QuoteHandler) reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quote, err := h.quotes.Reject(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, quote)
}
