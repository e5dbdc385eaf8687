package domain

import "errors"

// Not-found sentinels surfaced to the transport layer as 404s.
var (
	ErrChatbotNotFound      = errors.New("chatbot not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// GenerationError wraps any transport or backend fault raised by the
// generation backend or the intent classifier. Raw transport errors never
// cross a component boundary; they are converted to this type so the
// orchestrator can turn them into the fixed streamed error notice.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation failed: " + e.Op
	}
	return "generation failed: " + e.Op + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
