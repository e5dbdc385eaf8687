package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tidechat/answerd/internal/adapter/llm"
	"github.com/tidechat/answerd/internal/domain"
	"github.com/tidechat/answerd/internal/prompt"
	"github.com/tidechat/answerd/internal/smalltalk"
)

// ErrorNotice is streamed when generation fails mid-request. The response is
// already a 200 text stream by then; failures become apology text, never an
// HTTP error.
const ErrorNotice = "An unknown error has occurred, please try again later."

// Answer runs one question through the full pipeline and forwards each answer
// fragment to yield. The chatbot and conversation must already be validated.
//
// The turn is persisted exactly once, after the stream has fully drained
// without error. A generation failure streams ErrorNotice and persists
// nothing; a consumer abort (yield returning an error) also persists nothing.
func (s *Service) Answer(ctx context.Context, bot *domain.Chatbot, conv *domain.Conversation, question string, images []domain.Image, yield llm.StreamFunc) error {
	normalized, canned, ok := smalltalk.Match(question)
	if ok {
		s.log.WithField("question", normalized).Info("answered from the smalltalk table")
		return s.terminalAnswer(ctx, conv, question, images, canned, yield)
	}

	history, err := s.store.ListTurns(ctx, conv.ConversationID, domain.OrderChronological)
	if err != nil {
		return fmt.Errorf("failed to list turns: %w", err)
	}

	prompts := bot.Prompts()
	substantive := true

	if bot.ApplyIntentClassification {
		intent, err := s.classifyIntent(ctx, bot, history, question)
		if err != nil {
			s.log.WithError(err).Error("intent classification failed")
			return s.streamErrorNotice(yield)
		}
		if intent == domain.IntentSmalltalk {
			// Classified smalltalk still goes through the LLM, with the
			// smalltalk system prompt and no evidence.
			prompts = bot.SmalltalkPrompts()
			substantive = false
		}
	}

	var evidence []domain.Chunk
	if substantive {
		evidence = s.retriever.Retrieve(ctx, bot, question)
		if len(evidence) == 0 && bot.NoReferenceAnswer != "" {
			return s.terminalAnswer(ctx, conv, question, images, bot.NoReferenceAnswer, yield)
		}
	}

	messages := prompt.Build(bot, prompts, history, evidence, question, images)

	if bot.Echo {
		return s.terminalAnswer(ctx, conv, question, images, prompt.Text(messages), yield)
	}

	var answer strings.Builder
	err = s.llm.Stream(ctx, bot, messages, func(fragment string) error {
		answer.WriteString(fragment)
		return yield(fragment)
	})
	if err != nil {
		if domain.IsGenerationError(err) {
			s.log.WithError(err).Error("generation failed mid-stream")
			return s.streamErrorNotice(yield)
		}
		// The consumer aborted the stream; the partial answer is discarded.
		return err
	}

	return s.persistTurn(ctx, conv, question, images, answer.String(), evidence)
}

// terminalAnswer streams a fixed text word-by-word and persists it as the
// turn's answer. Canned, fallback and echo answers carry no evidence.
func (s *Service) terminalAnswer(ctx context.Context, conv *domain.Conversation, question string, images []domain.Image, text string, yield llm.StreamFunc) error {
	if err := streamWords(text, yield); err != nil {
		return err
	}
	return s.persistTurn(ctx, conv, question, images, text, nil)
}

// streamErrorNotice degrades a failed request to the fixed apology stream.
// Nothing is persisted.
func (s *Service) streamErrorNotice(yield llm.StreamFunc) error {
	if err := streamWords(ErrorNotice, yield); err != nil {
		return err
	}
	return nil
}

// persistTurn writes the single Turn record for this request, one reference
// per evidence chunk used in the prompt, and bumps the conversation's
// last-activity timestamp.
func (s *Service) persistTurn(ctx context.Context, conv *domain.Conversation, question string, images []domain.Image, answer string, evidence []domain.Chunk) error {
	turn := &domain.Turn{
		TurnID:         "turn_" + uuid.New().String()[:8],
		ConversationID: conv.ConversationID,
		Question:       question,
		Answer:         answer,
		Images:         images,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreateTurn(ctx, turn); err != nil {
		return fmt.Errorf("failed to create turn: %w", err)
	}

	for _, chunk := range evidence {
		ref := &domain.Reference{
			ReferenceID: "ref_" + uuid.New().String()[:8],
			TurnID:      turn.TurnID,
			Hyperlink:   chunk.URL,
			CreatedAt:   time.Now(),
		}
		if err := s.store.CreateReference(ctx, ref); err != nil {
			return fmt.Errorf("failed to create reference: %w", err)
		}
	}

	if err := s.store.TouchConversation(ctx, conv.ConversationID); err != nil {
		s.log.WithError(err).Warn("failed to touch conversation")
	}
	return nil
}

// streamWords yields text one word at a time with a trailing space.
func streamWords(text string, yield llm.StreamFunc) error {
	for _, word := range strings.Fields(text) {
		if err := yield(word + " "); err != nil {
			return err
		}
	}
	return nil
}
