package service

import (
	"context"
	"strings"

	"github.com/tidechat/answerd/internal/domain"
)

// intentMaxTokens bounds the classification completion; the classifier only
// needs to emit a label.
const intentMaxTokens = 10

// classifyIntent asks the chatbot's LLM whether the question is smalltalk or
// substantive, given the conversation so far. The intent prompt is the system
// message; the completion text containing "smalltalk" in any casing means
// smalltalk.
func (s *Service) classifyIntent(ctx context.Context, bot *domain.Chatbot, history []domain.Turn, question string) (domain.Intent, error) {
	messages := make([]domain.Message, 0, len(history)*2+2)
	if bot.IntentPrompt != "" {
		messages = append(messages, domain.TextMessage(domain.RoleSystem, bot.IntentPrompt))
	}
	for _, turn := range history {
		messages = append(messages, domain.TextMessage(domain.RoleUser, turn.Question))
		messages = append(messages, domain.TextMessage(domain.RoleAssistant, turn.Answer))
	}
	messages = append(messages, domain.TextMessage(domain.RoleUser, question))

	out, err := s.llm.Complete(ctx, bot.APIKey, bot.LLM, messages, intentMaxTokens, 0)
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(out), "smalltalk") {
		return domain.IntentSmalltalk, nil
	}
	return domain.IntentSubstantive, nil
}
