package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tidechat/answerd/internal/domain"
)

// ConversationCreateRequest is the request to open a conversation. The first
// question, when given, is summarized into the conversation's display name.
type ConversationCreateRequest struct {
	Question  string `json:"question"`
	ContactID string `json:"contact_id,omitempty"`
	Cookie    string `json:"cookie,omitempty"`
}

// TurnResponse is one turn with its recorded evidence references.
type TurnResponse struct {
	domain.Turn
	References []domain.Reference `json:"references"`
}

// CreateConversation opens a conversation under a chatbot.
// POST /chatbots/:chatbot_name/conversations
func (h *Handler) CreateConversation(c echo.Context) error {
	ctx := c.Request().Context()

	bot, err := h.service.GetChatbot(ctx, c.Param("chatbot_name"))
	if err != nil {
		if errors.Is(err, domain.ErrChatbotNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "chatbot not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var req ConversationCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}
	if req.ContactID == "" && req.Cookie == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contact_id or cookie is required"})
	}

	conv, err := h.service.CreateConversation(ctx, bot, req.Question, req.ContactID, req.Cookie)
	if err != nil {
		if domain.IsGenerationError(err) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "summarization service unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"content": conv})
}

// GetConversation returns one conversation.
// GET /chatbots/:chatbot_name/conversations/:conversation_id
func (h *Handler) GetConversation(c echo.Context) error {
	_, conv, err := h.resolveConversation(c)
	if err != nil {
		return h.notFoundOrInternal(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"content": conv})
}

// ListTurns lists a conversation's turns, newest first by default.
// GET /chatbots/:chatbot_name/conversations/:conversation_id/turns?order=chronological
func (h *Handler) ListTurns(c echo.Context) error {
	ctx := c.Request().Context()

	_, conv, err := h.resolveConversation(c)
	if err != nil {
		return h.notFoundOrInternal(c, err)
	}

	turns, err := h.service.ListTurns(ctx, conv, domain.TurnOrder(c.QueryParam("order")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	out := make([]TurnResponse, 0, len(turns))
	for _, turn := range turns {
		refs, err := h.service.ListReferences(ctx, turn.TurnID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		if refs == nil {
			refs = []domain.Reference{}
		}
		out = append(out, TurnResponse{Turn: turn, References: refs})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"content": out})
}

// resolveConversation loads the chatbot and conversation named in the path.
func (h *Handler) resolveConversation(c echo.Context) (*domain.Chatbot, *domain.Conversation, error) {
	ctx := c.Request().Context()

	bot, err := h.service.GetChatbot(ctx, c.Param("chatbot_name"))
	if err != nil {
		return nil, nil, err
	}
	conv, err := h.service.GetConversation(ctx, bot, c.Param("conversation_id"))
	if err != nil {
		return nil, nil, err
	}
	return bot, conv, nil
}

func (h *Handler) notFoundOrInternal(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrChatbotNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "chatbot not found"})
	}
	if errors.Is(err, domain.ErrConversationNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
