package domain

import "fmt"

// Message roles in the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged prompt message. Content is either a plain string
// or a []ContentPart when the message carries images; both marshal to the
// shapes the chat-completions API expects.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part message content.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference in the chat-completions format.
type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage builds a plain text message.
func TextMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// MultipartMessage builds a user message with a text part followed by one
// image part per attachment, each image rendered as a data URI.
func MultipartMessage(role, text string, images []Image) Message {
	parts := make([]ContentPart, 0, len(images)+1)
	parts = append(parts, ContentPart{Type: "text", Text: text})
	for _, img := range images {
		parts = append(parts, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: fmt.Sprintf("data:%s;base64,%s", img.MIME, img.Data)},
		})
	}
	return Message{Role: role, Content: parts}
}

// UserMessage builds the user message for a question, multi-part when images
// are attached.
func UserMessage(text string, images []Image) Message {
	if len(images) > 0 {
		return MultipartMessage(RoleUser, text, images)
	}
	return TextMessage(RoleUser, text)
}

// Text returns the textual content of a message, ignoring image parts.
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case []ContentPart:
		for _, p := range c {
			if p.Type == "text" {
				return p.Text
			}
		}
	}
	return ""
}

// Intent is the classified intent of a question.
type Intent string

const (
	IntentSmalltalk   Intent = "SMALLTALK"
	IntentSubstantive Intent = "SUBSTANTIVE"
)
