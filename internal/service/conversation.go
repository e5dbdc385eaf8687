package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tidechat/answerd/internal/domain"
)

// maxConversationName caps the summarized display name.
const maxConversationName = 50

// GetChatbot loads a chatbot by name.
func (s *Service) GetChatbot(ctx context.Context, name string) (*domain.Chatbot, error) {
	bot, err := s.store.GetChatbotByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	if bot == nil {
		return nil, domain.ErrChatbotNotFound
	}
	return bot, nil
}

// GetConversation loads a conversation scoped to a chatbot. A conversation
// that exists under another chatbot reads as not found.
func (s *Service) GetConversation(ctx context.Context, bot *domain.Chatbot, conversationID string) (*domain.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID, bot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.ErrConversationNotFound
	}
	return conv, nil
}

// CreateChatbot registers a chatbot so the service can run standalone.
func (s *Service) CreateChatbot(ctx context.Context, bot *domain.Chatbot) (*domain.Chatbot, error) {
	bot.ID = "bot_" + uuid.New().String()[:8]
	bot.CreatedAt = time.Now()
	if bot.Reranker == "" {
		bot.Reranker = domain.RerankerMiniLM
	}
	if err := s.store.CreateChatbot(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}
	return bot, nil
}

// CreateConversation opens a conversation under a chatbot. When a first
// question is given its summary becomes the conversation's display name; a
// summarization failure is surfaced to the caller, the conversation is not
// created.
func (s *Service) CreateConversation(ctx context.Context, bot *domain.Chatbot, firstQuestion, contactID, cookie string) (*domain.Conversation, error) {
	var name string
	if firstQuestion != "" {
		summary, err := s.summarizeQuestion(ctx, bot, firstQuestion)
		if err != nil {
			return nil, err
		}
		name = summary
	}

	now := time.Now()
	conv := &domain.Conversation{
		ConversationID: "conv_" + uuid.New().String()[:8],
		ChatbotID:      bot.ID,
		ContactID:      contactID,
		Cookie:         cookie,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// ListTurns lists a conversation's turns, newest first unless chronological
// order is requested.
func (s *Service) ListTurns(ctx context.Context, conv *domain.Conversation, order domain.TurnOrder) ([]domain.Turn, error) {
	if order != domain.OrderChronological {
		order = domain.OrderNewestFirst
	}
	turns, err := s.store.ListTurns(ctx, conv.ConversationID, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}

// ListReferences lists the evidence references recorded for a turn.
func (s *Service) ListReferences(ctx context.Context, turnID string) ([]domain.Reference, error) {
	refs, err := s.store.ListReferences(ctx, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	return refs, nil
}

// summarizeQuestion condenses the first question into a short title with the
// fixed summarization model.
func (s *Service) summarizeQuestion(ctx context.Context, bot *domain.Chatbot, question string) (string, error) {
	content := fmt.Sprintf("Create a title in exactly 3 words for this text: \"%s\". "+
		"The title should be in plain text only, no quotes, asterisks, or other formatting.", question)
	messages := []domain.Message{domain.TextMessage(domain.RoleUser, content)}

	var b strings.Builder
	err := s.llm.SummaryStream(ctx, bot.APIKey, s.config.SummaryModel, messages, func(fragment string) error {
		b.WriteString(fragment)
		return nil
	})
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(b.String())
	if len(name) > maxConversationName {
		name = name[:maxConversationName]
	}
	return name, nil
}
