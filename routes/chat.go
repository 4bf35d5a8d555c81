package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-server/models"
	"marketplace-server/services"
)

const maxChatImageSize = 5 << 20

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// RegisterChatRoutes registers customer/professional conversations.
func RegisterChatRoutes(router *gin.RouterGroup, h *ChatHandler) {
	chats := router.Group("/chats")
	{
		chats.GET("", h.list)
		chats.POST("", h.create)
		chats.GET("/:id", h.get)
		chats.POST("/:id/messages", h.sendMessage)
		chats.POST("/:id/images", h.sendImage)
	}
}

func (h *ChatHandler) list(c *gin.Context) {
	chats, err := h.chats.List(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, chats)
}

func (h *ChatHandler) create(c *gin.Context) {
	var req models.ChatCreate
	if !bindJSON(c, &req) {
		return
	}
	chat, created, err := h.chats.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		respondCreated(c, chat)
		return
	}
	respondOK(c, chat)
}

func (h *ChatHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	chat, err := h.chats.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, chat)
}

func (h *ChatHandler) sendMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.MessageCreate
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.chats.SendMessage(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, msg)
}

func (h *ChatHandler) sendImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "image file is required", nil))
		return
	}
	if header.Size > maxChatImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody("PAYLOAD_TOO_LARGE", "Image exceeds 5MB", nil))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	msg, err := h.chats.SendImage(c.Request.Context(), principal(c), id, file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, msg)
}
