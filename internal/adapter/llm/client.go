// Package llm provides the streaming generation client. It speaks the
// chat-completions wire format against a selectable backend model and
// converts every transport-level fault into a domain.GenerationError; raw
// transport errors never reach the orchestrator.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tidechat/answerd/internal/domain"
)

// DeprecatedModelNotice is streamed word-by-word when the backend reports the
// chatbot's model as not found. Model-not-found is a degraded success, not an
// error path.
const DeprecatedModelNotice = "The LLM for this chatbot is deprecated. Please contact support."

// backendModels maps a chatbot's short LLM name to the backend model
// identifier. Loaded once, never mutated.
var backendModels = map[string]string{
	domain.LLMChatGPT4:         "GPT-4o",
	domain.LLMChatGPT41:        "GPT-4.1",
	domain.LLMUccixInstruct:    "UCCIX-Instruct",
	domain.LLMUccixInstruct70B: "UCCIX-v2-Llama3.1-70B-Instruct",
	domain.LLMMistral24B:       "UCCIX-Mistral-24B",
	domain.LLMDeepseek:         "deepseek-ai/DeepSeek-R1-Distill-Llama-70B",
}

// passthroughModels emit no reasoning-delimiter tokens; their streams are
// forwarded unchanged. Every other model gets <think>/</think> rewritten to
// the uniform bracketed notation.
var passthroughModels = map[string]bool{
	domain.LLMChatGPT4:      true,
	domain.LLMUccixInstruct: true,
}

// ResolveModel maps a chatbot LLM name to its backend model identifier.
func ResolveModel(name string) (string, bool) {
	model, ok := backendModels[name]
	return model, ok
}

// Client is the generation backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a new generation client. The timeout bounds the whole
// request including stream consumption, so a hung backend surfaces as a
// GenerationError instead of a stuck answer request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logrus.WithField("component", "llm"),
	}
}

// chatCompletionRequest is the chat-completions request body.
type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Stream      bool             `json:"stream"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
	Seed        *int             `json:"seed,omitempty"`
}

// chatMessage is the response-side message/delta shape.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type choice struct {
	Index        int          `json:"index"`
	Message      *chatMessage `json:"message,omitempty"`
	Delta        *chatMessage `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type streamChunk struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

// StreamFunc receives one text fragment of a generation stream. Returning an
// error aborts the stream.
type StreamFunc func(fragment string) error

// Stream generates an answer for the chatbot's configured model and forwards
// each fragment to yield. The sequence is finite and not restartable.
//
// A backend 404 for the model degrades to streaming DeprecatedModelNotice one
// word at a time and returns nil. Any other fault — connection, timeout, HTTP
// error, malformed stream — returns a *domain.GenerationError.
func (c *Client) Stream(ctx context.Context, bot *domain.Chatbot, messages []domain.Message, yield StreamFunc) error {
	model, ok := ResolveModel(bot.LLM)
	if !ok {
		// Unknown short name: the model was removed from the table, which is
		// the same operator condition as a backend 404.
		c.log.WithField("llm", bot.LLM).Error("chatbot refers to an unknown LLM name")
		return streamWords(DeprecatedModelNotice, yield)
	}

	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Stream:      true,
		MaxTokens:   bot.MaxTokens,
		Temperature: bot.Temperature,
	}

	resp, err := c.send(ctx, bot.APIKey, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		c.log.WithFields(logrus.Fields{"model": model, "chatbot": bot.Name}).
			Error("model not found in the generation backend")
		return streamWords(DeprecatedModelNotice, yield)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &domain.GenerationError{
			Op:  "stream",
			Err: fmt.Errorf("LLM API error [%d]: %s", resp.StatusCode, string(respBody)),
		}
	}

	rewrite := !passthroughModels[bot.LLM]
	return c.consumeStream(ctx, resp.Body, rewrite, yield)
}

// consumeStream reads the SSE response body and forwards delta fragments.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, rewriteThink bool, yield StreamFunc) error {
	reader := bufio.NewReader(body)
	for {
		select {
		case <-ctx.Done():
			return &domain.GenerationError{Op: "stream", Err: ctx.Err()}
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &domain.GenerationError{Op: "stream", Err: fmt.Errorf("failed to read stream: %w", err)}
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if rewriteThink {
			switch content {
			case "<think>":
				content = "[THINK]"
			case "</think>":
				content = "[/THINK]"
			}
		}
		if err := yield(content); err != nil {
			return err
		}
	}
}

// Complete runs a non-streaming chat completion and returns the full message
// content. Used by intent classification.
func (c *Client) Complete(ctx context.Context, apiKey, llmName string, messages []domain.Message, maxTokens int, temperature float64) (string, error) {
	model, ok := ResolveModel(llmName)
	if !ok {
		return "", &domain.GenerationError{Op: "complete", Err: fmt.Errorf("unknown llm name %q", llmName)}
	}

	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	resp, err := c.send(ctx, apiKey, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.GenerationError{Op: "complete", Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.GenerationError{
			Op:  "complete",
			Err: fmt.Errorf("LLM API error [%d]: %s", resp.StatusCode, string(respBody)),
		}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &domain.GenerationError{Op: "complete", Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return "", &domain.GenerationError{Op: "complete", Err: fmt.Errorf("response contained no choices")}
	}
	return result.Choices[0].Message.Content, nil
}

// SummaryStream generates a conversation summary with the fixed summarization
// model: a small token budget, near-greedy sampling and a pinned seed so the
// same first question summarizes the same way.
func (c *Client) SummaryStream(ctx context.Context, apiKey, model string, messages []domain.Message, yield StreamFunc) error {
	backend, ok := ResolveModel(model)
	if !ok {
		backend = model
	}
	seed := 42
	req := chatCompletionRequest{
		Model:       backend,
		Messages:    messages,
		Stream:      true,
		MaxTokens:   100,
		Temperature: 0.1,
		Seed:        &seed,
	}

	resp, err := c.send(ctx, apiKey, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &domain.GenerationError{
			Op:  "summary",
			Err: fmt.Errorf("LLM API error [%d]: %s", resp.StatusCode, string(respBody)),
		}
	}
	return c.consumeStream(ctx, resp.Body, false, yield)
}

// send issues one chat-completions POST. Transport faults come back as
// *domain.GenerationError.
func (c *Client) send(ctx context.Context, apiKey string, req chatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.GenerationError{Op: "send", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GenerationError{Op: "send", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.WithError(err).Error("generation backend request failed")
		return nil, &domain.GenerationError{Op: "send", Err: err}
	}
	return resp, nil
}

// streamWords yields text one word at a time, each padded with a trailing
// space.
func streamWords(text string, yield StreamFunc) error {
	for _, word := range strings.Fields(text) {
		if err := yield(word + " "); err != nil {
			return err
		}
	}
	return nil
}
