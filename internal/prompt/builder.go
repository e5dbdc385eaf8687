// Package prompt assembles the ordered message sequence sent to the
// generation backend: system prompt, prior turns in chronological order,
// retrieved evidence and the current question. The current turn is formatted
// by a model-family strategy selected once per request.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidechat/answerd/internal/domain"
)

// Family formats the current turn's content for one model family.
type Family interface {
	// FormatCurrentTurn renders the current question together with the
	// user-prompt template and the evidence chunks.
	FormatCurrentTurn(prompts domain.EffectivePrompt, question string, evidence []domain.Chunk) string
}

// FamilyFor selects the formatting strategy for a chatbot's LLM. The deepseek
// family expects the citation-style evidence layout; everything else uses the
// numbered-source layout.
func FamilyFor(llmName string) Family {
	if llmName == domain.LLMDeepseek {
		return citationFamily{today: func() time.Time { return time.Now() }}
	}
	return defaultFamily{}
}

// Build assembles the full prompt. Message ordering is strictly
// chronological-then-current: system prompt first when configured, then each
// prior turn's user/assistant pair oldest first, then the current question.
// History must already be in chronological order.
func Build(bot *domain.Chatbot, prompts domain.EffectivePrompt, history []domain.Turn, evidence []domain.Chunk, question string, images []domain.Image) []domain.Message {
	messages := make([]domain.Message, 0, len(history)*2+2)

	if prompts.System != "" {
		messages = append(messages, domain.TextMessage(domain.RoleSystem, prompts.System))
	}

	for _, turn := range history {
		messages = append(messages, domain.UserMessage(turn.Question, turn.Images))
		messages = append(messages, domain.TextMessage(domain.RoleAssistant, turn.Answer))
	}

	content := FamilyFor(bot.LLM).FormatCurrentTurn(prompts, question, evidence)
	messages = append(messages, domain.UserMessage(content, images))

	return messages
}

// defaultFamily renders evidence as numbered, lettered source citations after
// the question.
type defaultFamily struct{}

func (defaultFamily) FormatCurrentTurn(prompts domain.EffectivePrompt, question string, evidence []domain.Chunk) string {
	var b strings.Builder
	b.WriteString(question)

	if prompts.User != "" && len(evidence) > 0 {
		b.WriteString("\n\n")
		b.WriteString(prompts.User)
	}

	for i, chunk := range evidence {
		letter := rune('A' + i%26)
		fmt.Fprintf(&b, "\n\n%d. According to [Source %c](%s):\n%s", i+1, letter, chunk.URL, chunk.Text)
	}

	return b.String()
}

// citationFamily renders evidence as labelled webpage blocks followed by a
// fixed citation-formatting instruction, with the question restated at the
// end. With no evidence the content is just the question.
type citationFamily struct {
	today func() time.Time
}

func (f citationFamily) FormatCurrentTurn(prompts domain.EffectivePrompt, question string, evidence []domain.Chunk) string {
	if len(evidence) == 0 {
		return question
	}

	var b strings.Builder
	if prompts.User != "" {
		b.WriteString(prompts.User)
	}
	b.WriteString("\n# The following contents are the search results related to the user's message:")

	for i, chunk := range evidence {
		fmt.Fprintf(&b, "\n[webpage %d begin]\nwebpage_url: %s\nwebpage_content: %s\n[webpage %d end]\n", i+1, chunk.URL, chunk.Text, i+1)
	}

	fmt.Fprintf(&b, citationInstructions, f.today().Format("2006-01-02"))
	fmt.Fprintf(&b, "\n# The user's message is:\n%s\n", question)

	return b.String()
}

// citationInstructions is the fixed instruction block of the citation-style
// family. The only variable is today's date.
const citationInstructions = `
In the search results I provide to you, each result is formatted as [webpage X begin]...[webpage X end],
where X represents the numerical index of each article. Please cite the context at the end of the relevant
sentence when appropriate. Use the citation format [citation:X](citation_url) in the corresponding part of your answer.
If a sentence is derived from multiple contexts, list all relevant citation numbers, such as [citation:3](citation_url)
[citation:5](citation_url). Be sure not to cluster all citations at the end; instead, include them in the corresponding
parts of the answer.
When responding, please keep the following points in mind:
- Today is %s.
- Not all content in the search results is closely related to the user's question. You need to evaluate and filter the
search results based on the question.
- For listing-type questions (e.g., listing all flight information), try to limit the answer to 10 key points and inform
the user that they can refer to the search sources for complete information. Prioritize providing the most complete and
relevant items in the list. Avoid mentioning content not provided in the search results unless necessary.
- For creative tasks (e.g., writing an essay), ensure that references are cited within the body of the text,
such as [citation:3][citation:5], rather than only at the end of the text. You need to interpret and summarize
the user's requirements, choose an appropriate format, fully utilize the search results, extract key information,
and generate an answer that is insightful, creative, and professional. Extend the length of your response as much as
possible, addressing each point in detail and from multiple perspectives, ensuring the content is rich and thorough.
- If the response is lengthy, structure it well and summarize it in paragraphs. If a point-by-point format is needed,
try to limit it to 5 points and merge related content.
- For objective Q&A, if the answer is very brief, you may add one or two related sentences to enrich the content.
- Choose an appropriate and visually appealing format for your response based on the user's requirements and the
content of the answer, ensuring strong readability.
- Your answer should synthesize information from multiple relevant webpages and avoid repeatedly citing
the same webpage.
- Unless the user requests otherwise, your response should be in the same language as the user's question.
`

// Text renders a prompt as plain text, one "role: content" line per message.
// Used by the echo debug mode so operators can inspect exactly what would
// have been sent to the backend.
func Text(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role+": "+m.Text())
	}
	return strings.Join(lines, "\n")
}
