package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tidechat/answerd/internal/domain"
)

// ChatbotCreateRequest is the request to register a chatbot.
type ChatbotCreateRequest struct {
	Name                      string   `json:"name"`
	APIKey                    string   `json:"api_key"`
	LLM                       string   `json:"llm"`
	CorpusNames               []string `json:"corpus_names"`
	MaxTokens                 int      `json:"max_tokens"`
	Temperature               float64  `json:"temperature"`
	Echo                      bool     `json:"echo"`
	Encoder                   string   `json:"encoder"`
	Similarity                string   `json:"similarity"`
	Threshold                 float64  `json:"threshold"`
	ReferenceLimit            int      `json:"reference_limit"`
	BM25Limit                 int      `json:"bm25_limit"`
	ApplyReranking            bool     `json:"apply_reranking"`
	Reranker                  string   `json:"reranker"`
	RerankingLimit            int      `json:"reranking_limit"`
	ChunkSize                 int      `json:"chunk_size"`
	ChunkOverlap              int      `json:"chunk_overlap"`
	SystemPrompt              string   `json:"system_prompt"`
	UserPrompt                string   `json:"user_prompt"`
	SmalltalkPrompt           string   `json:"smalltalk_prompt"`
	IntentPrompt              string   `json:"intent_prompt"`
	ApplyIntentClassification bool     `json:"apply_intent_classification"`
	NoReferenceAnswer         string   `json:"no_reference_answer"`
}

// ChatbotResponse is the public configuration subset of a chatbot. The API
// key and prompt templates never leave the service.
type ChatbotResponse struct {
	Name                      string    `json:"name"`
	LLM                       string    `json:"llm"`
	MaxTokens                 int       `json:"max_tokens"`
	Temperature               float64   `json:"temperature"`
	ReferenceLimit            int       `json:"reference_limit"`
	BM25Limit                 int       `json:"bm25_limit"`
	ApplyReranking            bool      `json:"apply_reranking"`
	ApplyIntentClassification bool      `json:"apply_intent_classification"`
	CreatedAt                 time.Time `json:"created_at"`
}

func chatbotResponse(bot *domain.Chatbot) ChatbotResponse {
	return ChatbotResponse{
		Name:                      bot.Name,
		LLM:                       bot.LLM,
		MaxTokens:                 bot.MaxTokens,
		Temperature:               bot.Temperature,
		ReferenceLimit:            bot.ReferenceLimit,
		BM25Limit:                 bot.BM25Limit,
		ApplyReranking:            bot.ApplyReranking,
		ApplyIntentClassification: bot.ApplyIntentClassification,
		CreatedAt:                 bot.CreatedAt,
	}
}

// CreateChatbot registers a chatbot.
// POST /chatbots
func (h *Handler) CreateChatbot(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatbotCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if req.APIKey == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "api_key is required"})
	}
	if req.LLM == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "llm is required"})
	}

	bot, err := h.service.CreateChatbot(ctx, &domain.Chatbot{
		Name:                      req.Name,
		APIKey:                    req.APIKey,
		LLM:                       req.LLM,
		CorpusNames:               req.CorpusNames,
		MaxTokens:                 req.MaxTokens,
		Temperature:               req.Temperature,
		Echo:                      req.Echo,
		Encoder:                   req.Encoder,
		Similarity:                req.Similarity,
		Threshold:                 req.Threshold,
		ReferenceLimit:            req.ReferenceLimit,
		BM25Limit:                 req.BM25Limit,
		ApplyReranking:            req.ApplyReranking,
		Reranker:                  req.Reranker,
		RerankingLimit:            req.RerankingLimit,
		ChunkSize:                 req.ChunkSize,
		ChunkOverlap:              req.ChunkOverlap,
		SystemPrompt:              req.SystemPrompt,
		UserPrompt:                req.UserPrompt,
		SmalltalkPrompt:           req.SmalltalkPrompt,
		IntentPrompt:              req.IntentPrompt,
		ApplyIntentClassification: req.ApplyIntentClassification,
		NoReferenceAnswer:         req.NoReferenceAnswer,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"content": chatbotResponse(bot)})
}

// GetChatbot returns a chatbot's public configuration.
// GET /chatbots/:chatbot_name
func (h *Handler) GetChatbot(c echo.Context) error {
	ctx := c.Request().Context()

	bot, err := h.service.GetChatbot(ctx, c.Param("chatbot_name"))
	if err != nil {
		if errors.Is(err, domain.ErrChatbotNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "chatbot not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"content": chatbotResponse(bot)})
}
