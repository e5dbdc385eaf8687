package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tidechat/answerd/internal/domain"
)

// AnswerRequest is the request to answer a question in a conversation.
type AnswerRequest struct {
	Question string         `json:"question"`
	Images   []domain.Image `json:"images,omitempty"`
}

// Answer answers a question inside a conversation as a text stream.
// POST /chatbots/:chatbot_name/conversations/:conversation_id/answer
//
// Validation failures are plain HTTP errors; once the stream has started the
// response is always 200 and failures become streamed apology text.
func (h *Handler) Answer(c echo.Context) error {
	ctx := c.Request().Context()

	bot, err := h.service.GetChatbot(ctx, c.Param("chatbot_name"))
	if err != nil {
		if errors.Is(err, domain.ErrChatbotNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "chatbot not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	conv, err := h.service.GetConversation(ctx, bot, c.Param("conversation_id"))
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)

	err = h.service.Answer(ctx, bot, conv, req.Question, req.Images, func(fragment string) error {
		if _, err := c.Response().Writer.Write([]byte(fragment)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// The stream is already committed; nothing more can be sent.
		c.Logger().Error(err)
	}
	return nil
}
