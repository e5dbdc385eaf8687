package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidechat/answerd/internal/domain"
)

func TestBuildOrderingChronologicalThenCurrent(t *testing.T) {
	bot := &domain.Chatbot{LLM: domain.LLMChatGPT4}
	prompts := domain.EffectivePrompt{System: "You are helpful."}
	history := []domain.Turn{
		{Question: "first question", Answer: "first answer"},
		{Question: "second question", Answer: "second answer"},
		{Question: "third question", Answer: "third answer"},
	}

	messages := Build(bot, prompts, history, nil, "current question", nil)

	require.Len(t, messages, 8)
	assert.Equal(t, domain.RoleSystem, messages[0].Role)
	assert.Equal(t, "You are helpful.", messages[0].Text())

	wantPairs := []string{"first", "second", "third"}
	for i, prefix := range wantPairs {
		user := messages[1+i*2]
		assistant := messages[2+i*2]
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, prefix+" question", user.Text())
		assert.Equal(t, domain.RoleAssistant, assistant.Role)
		assert.Equal(t, prefix+" answer", assistant.Text())
	}

	last := messages[len(messages)-1]
	assert.Equal(t, domain.RoleUser, last.Role)
	assert.Equal(t, "current question", last.Text())
}

func TestBuildNoSystemPromptOmitsSystemMessage(t *testing.T) {
	bot := &domain.Chatbot{LLM: domain.LLMChatGPT4}

	messages := Build(bot, domain.EffectivePrompt{}, nil, nil, "q", nil)

	require.Len(t, messages, 1)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
}

func TestDefaultFamilyEvidenceFormatting(t *testing.T) {
	prompts := domain.EffectivePrompt{User: "Answer using the sources below."}
	evidence := []domain.Chunk{
		{URL: "https://a.example/one", Text: "alpha text"},
		{URL: "https://b.example/two", Text: "beta text"},
	}

	content := defaultFamily{}.FormatCurrentTurn(prompts, "what is alpha?", evidence)

	assert.True(t, strings.HasPrefix(content, "what is alpha?"))
	assert.Contains(t, content, "Answer using the sources below.")
	assert.Contains(t, content, "1. According to [Source A](https://a.example/one):\nalpha text")
	assert.Contains(t, content, "2. According to [Source B](https://b.example/two):\nbeta text")
}

func TestDefaultFamilyOmitsUserPromptWithoutEvidence(t *testing.T) {
	prompts := domain.EffectivePrompt{User: "Answer using the sources below."}

	content := defaultFamily{}.FormatCurrentTurn(prompts, "what is alpha?", nil)

	assert.Equal(t, "what is alpha?", content)
}

func TestCitationFamilyEvidenceFormatting(t *testing.T) {
	prompts := domain.EffectivePrompt{User: "Ground your answer."}
	evidence := []domain.Chunk{{URL: "https://a.example", Text: "alpha"}}

	content := FamilyFor(domain.LLMDeepseek).FormatCurrentTurn(prompts, "what is alpha?", evidence)

	assert.True(t, strings.HasPrefix(content, "Ground your answer."))
	assert.Contains(t, content, "[webpage 1 begin]\nwebpage_url: https://a.example\nwebpage_content: alpha\n[webpage 1 end]")
	assert.Contains(t, content, "Use the citation format [citation:X](citation_url)")
	assert.True(t, strings.HasSuffix(content, "# The user's message is:\nwhat is alpha?\n"))
}

func TestCitationFamilyWithoutEvidenceIsBareQuestion(t *testing.T) {
	content := FamilyFor(domain.LLMDeepseek).FormatCurrentTurn(domain.EffectivePrompt{User: "template"}, "just a question", nil)
	assert.Equal(t, "just a question", content)
}

func TestFamilySelection(t *testing.T) {
	assert.IsType(t, citationFamily{}, FamilyFor(domain.LLMDeepseek))
	assert.IsType(t, defaultFamily{}, FamilyFor(domain.LLMChatGPT4))
	assert.IsType(t, defaultFamily{}, FamilyFor(domain.LLMMistral24B))
}

func TestBuildWithImagesProducesMultipartContent(t *testing.T) {
	bot := &domain.Chatbot{LLM: domain.LLMChatGPT4}
	images := []domain.Image{{Data: "aGVsbG8=", MIME: "image/png", Name: "shot.png"}}

	messages := Build(bot, domain.EffectivePrompt{}, nil, nil, "what is in this image?", images)

	require.Len(t, messages, 1)
	parts, ok := messages[0].Content.([]domain.ContentPart)
	require.True(t, ok, "expected multipart content")
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "what is in this image?", parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", parts[1].ImageURL.URL)
}

func TestBuildHistoryTurnWithImages(t *testing.T) {
	bot := &domain.Chatbot{LLM: domain.LLMChatGPT4}
	history := []domain.Turn{{
		Question: "what was in that image?",
		Answer:   "a cat",
		Images:   []domain.Image{{Data: "eA==", MIME: "image/jpeg"}},
	}}

	messages := Build(bot, domain.EffectivePrompt{}, history, nil, "q", nil)

	require.Len(t, messages, 3)
	parts, ok := messages[0].Content.([]domain.ContentPart)
	require.True(t, ok, "history turn with images must be multipart")
	assert.Len(t, parts, 2)
	assert.Equal(t, "a cat", messages[1].Text())
}

func TestPromptText(t *testing.T) {
	messages := []domain.Message{
		domain.TextMessage(domain.RoleSystem, "sys"),
		domain.TextMessage(domain.RoleUser, "hi"),
	}
	assert.Equal(t, "system: sys\nuser: hi", Text(messages))
}
