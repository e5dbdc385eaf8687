package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidechat/answerd/internal/domain"
)

func TestGetChatbotNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetChatbot(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrChatbotNotFound)
}

func TestGetConversationWrongChatbot(t *testing.T) {
	f := newFixture()
	other := &domain.Chatbot{ID: "bot_other", Name: "other"}

	_, err := f.svc.GetConversation(context.Background(), other, "conv_1")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestCreateConversationSummarizesFirstQuestion(t *testing.T) {
	f := newFixture()
	f.llm.summaryFragments = []string{"Warranty ", "Period ", "Question"}

	conv, err := f.svc.CreateConversation(context.Background(), f.bot, "what is the warranty period?", "contact_1", "")
	require.NoError(t, err)

	assert.Equal(t, "Warranty Period Question", conv.Name)
	assert.Equal(t, "bot_1", conv.ChatbotID)
	assert.Equal(t, "contact_1", conv.ContactID)
	assert.True(t, strings.HasPrefix(conv.ConversationID, "conv_"))
	assert.NotNil(t, f.store.convs[conv.ConversationID])
}

func TestCreateConversationTruncatesLongSummary(t *testing.T) {
	f := newFixture()
	f.llm.summaryFragments = []string{strings.Repeat("x", 80)}

	conv, err := f.svc.CreateConversation(context.Background(), f.bot, "q", "", "cookie_1")
	require.NoError(t, err)

	assert.Len(t, conv.Name, maxConversationName)
}

func TestCreateConversationWithoutQuestionHasNoName(t *testing.T) {
	f := newFixture()

	conv, err := f.svc.CreateConversation(context.Background(), f.bot, "", "contact_1", "")
	require.NoError(t, err)

	assert.Empty(t, conv.Name)
}

func TestCreateConversationSummaryFailure(t *testing.T) {
	f := newFixture()
	f.llm.summaryErr = &domain.GenerationError{Op: "summary", Err: errors.New("unreachable")}

	_, err := f.svc.CreateConversation(context.Background(), f.bot, "q", "contact_1", "")
	require.Error(t, err)
	assert.True(t, domain.IsGenerationError(err))
	assert.Len(t, f.store.convs, 1, "only the fixture conversation should exist")
}

func TestCreateChatbotAssignsIDAndDefaults(t *testing.T) {
	f := newFixture()

	bot, err := f.svc.CreateChatbot(context.Background(), &domain.Chatbot{Name: "fresh", LLM: domain.LLMChatGPT4})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(bot.ID, "bot_"))
	assert.Equal(t, domain.RerankerMiniLM, bot.Reranker)
	assert.NotNil(t, f.store.bots["fresh"])
}

func TestListTurnsDefaultsToNewestFirst(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListTurns(context.Background(), f.conv, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderNewestFirst, f.store.listOrder)

	_, err = f.svc.ListTurns(context.Background(), f.conv, domain.OrderChronological)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderChronological, f.store.listOrder)
}
