package domain

import "time"

// Conversation identifies one chat session owned by a chatbot. It is mutated
// only by appending turns.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	ChatbotID      string    `json:"chatbot_id"`
	ContactID      string    `json:"contact_id,omitempty"`
	Cookie         string    `json:"cookie,omitempty"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Image is one attachment on a question: the raw payload base64-encoded, its
// MIME type and the original filename.
type Image struct {
	Data string `json:"data"`
	MIME string `json:"mime"`
	Name string `json:"name,omitempty"`
}

// Turn is one question/answer exchange within a conversation. The answer is
// the full accumulated text of the generation stream; partial streams are
// never persisted.
type Turn struct {
	TurnID         string    `json:"turn_id"`
	ConversationID string    `json:"conversation_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Images         []Image   `json:"images,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reference records the URL provenance of one evidence chunk used to answer a
// turn.
type Reference struct {
	ReferenceID string    `json:"reference_id"`
	TurnID      string    `json:"turn_id"`
	Hyperlink   string    `json:"hyperlink"`
	CreatedAt   time.Time `json:"created_at"`
}

// TurnOrder selects the ordering of a turn listing.
type TurnOrder string

const (
	// OrderChronological lists turns oldest first, the order required for
	// prompt construction.
	OrderChronological TurnOrder = "chronological"
	// OrderNewestFirst is the store's default listing order.
	OrderNewestFirst TurnOrder = "newest_first"
)
