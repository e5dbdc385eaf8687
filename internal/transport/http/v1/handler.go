// Package v1 provides HTTP handlers for the answer service.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tidechat/answerd/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chatbot API
	e.POST("/chatbots", h.CreateChatbot)
	e.GET("/chatbots/:chatbot_name", h.GetChatbot)

	// Conversation API
	e.POST("/chatbots/:chatbot_name/conversations", h.CreateConversation)
	e.GET("/chatbots/:chatbot_name/conversations/:conversation_id", h.GetConversation)
	e.GET("/chatbots/:chatbot_name/conversations/:conversation_id/turns", h.ListTurns)

	// Answer API
	e.POST("/chatbots/:chatbot_name/conversations/:conversation_id/answer", h.Answer)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
