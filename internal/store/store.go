// Package store defines the persistence interface and its SQLite
// implementation.
package store

import (
	"context"

	"github.com/tidechat/answerd/internal/domain"
)

// Store is the durable record of chatbots, conversations and turns. Lookups
// return (nil, nil) when the record does not exist.
type Store interface {
	// Chatbot operations
	CreateChatbot(ctx context.Context, bot *domain.Chatbot) error
	GetChatbotByName(ctx context.Context, name string) (*domain.Chatbot, error)

	// Conversation operations
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, conversationID, chatbotID string) (*domain.Conversation, error)
	TouchConversation(ctx context.Context, conversationID string) error

	// Turn operations. ListTurns returns newest first unless order is
	// chronological.
	CreateTurn(ctx context.Context, turn *domain.Turn) error
	ListTurns(ctx context.Context, conversationID string, order domain.TurnOrder) ([]domain.Turn, error)

	// Reference operations
	CreateReference(ctx context.Context, ref *domain.Reference) error
	ListReferences(ctx context.Context, turnID string) ([]domain.Reference, error)

	// Lifecycle
	Close() error
}
