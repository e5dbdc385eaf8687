// Package domain defines the core domain models for the answer service.
package domain

import "time"

// Encoder choices for the embedding search service.
const (
	EncoderCIX    = "cix_encoder"
	EncoderDragon = "dragon_plus"
	EncoderTest   = "test_encoder"
	EncoderUSE4   = "use4"
)

// Similarity metric choices for vector search ordering.
const (
	SimilarityCosine    = "cosine_similarity"
	SimilarityDot       = "dot_product"
	SimilarityEuclidean = "euclidean_distance"
)

// LLM name choices. These are the short names stored on a chatbot; the
// generation client maps them to backend model identifiers.
const (
	LLMChatGPT4         = "chatgpt4"
	LLMChatGPT41        = "chatgpt4.1"
	LLMUccixInstruct    = "uccix_instruct"
	LLMUccixInstruct70B = "uccix_instruct_70b"
	LLMMistral24B       = "UCCIX-Mistral-24B"
	LLMDeepseek         = "deepseek"
)

// RerankerMiniLM is the default reranker model.
const RerankerMiniLM = "minilm-l-6-v2"

// Chatbot holds the pipeline configuration for one chatbot. It is loaded once
// per answer request and treated as a read-only snapshot for the duration of
// that request.
type Chatbot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	APIKey      string    `json:"-"`
	CorpusNames []string  `json:"corpus_names"`
	CreatedAt   time.Time `json:"created_at"`

	// Generation settings
	LLM         string  `json:"llm"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Echo        bool    `json:"echo"`

	// Retrieval settings
	Encoder        string  `json:"encoder"`
	Similarity     string  `json:"similarity"`
	Threshold      float64 `json:"threshold"`
	ReferenceLimit int     `json:"reference_limit"`
	BM25Limit      int     `json:"bm25_limit"`
	ApplyReranking bool    `json:"apply_reranking"`
	Reranker       string  `json:"reranker"`
	RerankingLimit int     `json:"reranking_limit"`

	// Ingest-time chunking settings. Not used at answer time but part of the
	// chatbot record.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// Prompts
	SystemPrompt    string `json:"system_prompt"`
	UserPrompt      string `json:"user_prompt"`
	SmalltalkPrompt string `json:"smalltalk_prompt"`
	IntentPrompt    string `json:"intent_prompt"`

	// Intent classification
	ApplyIntentClassification bool `json:"apply_intent_classification"`

	// Fallback answer streamed when retrieval produced zero evidence. Empty
	// string disables the fallback and the question goes to the LLM with no
	// evidence.
	NoReferenceAnswer string `json:"no_reference_answer"`
}

// EffectivePrompt is the (system prompt, user prompt) pair actually used for
// one answer request. It is built fresh per request so the shared Chatbot
// snapshot is never mutated, even for the smalltalk override.
type EffectivePrompt struct {
	System string
	User   string
}

// Prompts returns the chatbot's normal prompt pair.
func (b *Chatbot) Prompts() EffectivePrompt {
	return EffectivePrompt{System: b.SystemPrompt, User: b.UserPrompt}
}

// SmalltalkPrompts returns the prompt pair used when intent classification
// routed the question to the smalltalk path: the smalltalk system prompt and
// no user prompt template.
func (b *Chatbot) SmalltalkPrompts() EffectivePrompt {
	return EffectivePrompt{System: b.SmalltalkPrompt}
}
