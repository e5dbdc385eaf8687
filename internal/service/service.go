// Package service implements the answer orchestrator: smalltalk gating,
// intent classification, retrieval, prompt assembly, streamed generation and
// turn persistence.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tidechat/answerd/internal/adapter/llm"
	"github.com/tidechat/answerd/internal/config"
	"github.com/tidechat/answerd/internal/domain"
	"github.com/tidechat/answerd/internal/store"
)

// Generator is the slice of the generation client the orchestrator needs.
type Generator interface {
	Stream(ctx context.Context, bot *domain.Chatbot, messages []domain.Message, yield llm.StreamFunc) error
	Complete(ctx context.Context, apiKey, llmName string, messages []domain.Message, maxTokens int, temperature float64) (string, error)
	SummaryStream(ctx context.Context, apiKey, model string, messages []domain.Message, yield llm.StreamFunc) error
}

// EvidenceRetriever produces the evidence chunks for a question. It never
// fails; retrieval faults degrade to an empty set.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, bot *domain.Chatbot, question string) []domain.Chunk
}

type Service struct {
	store     store.Store
	retriever EvidenceRetriever
	llm       Generator
	config    *config.Config
	log       *logrus.Entry
}

func New(store store.Store, retriever EvidenceRetriever, generator Generator, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		retriever: retriever,
		llm:       generator,
		config:    cfg,
		log:       logrus.WithField("component", "service"),
	}
}
