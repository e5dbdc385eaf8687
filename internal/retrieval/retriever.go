// Package retrieval implements hybrid evidence retrieval: dense vector
// search, lexical best-match search, fusion and reranking. The retrieval mode
// is selected once per answer request from the chatbot configuration.
package retrieval

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tidechat/answerd/internal/domain"
)

// SearchClient is the slice of the search service client the retriever needs.
// Implementations degrade to empty results on failure; no method returns an
// error.
type SearchClient interface {
	VectorSearch(ctx context.Context, apiKey string, names []string, encoder, query, orderBy string, limit int, threshold float64) []domain.VectorHit
	KeywordSearch(ctx context.Context, apiKey string, names []string, chunks []domain.Chunk, limit int, query string) []domain.Chunk
	Rerank(ctx context.Context, bot *domain.Chatbot, chunks []domain.Chunk, query string) []domain.Chunk
}

// Retriever fuses evidence from the configured retrieval modes.
type Retriever struct {
	search SearchClient
	log    *logrus.Entry
}

// New creates a retriever over the given search client.
func New(search SearchClient) *Retriever {
	return &Retriever{
		search: search,
		log:    logrus.WithField("component", "retrieval"),
	}
}

// Retrieve returns the evidence chunks for a question.
//
// Mode selection, evaluated once per request:
//   - reranking enabled: vector search and corpus keyword search run
//     concurrently (both read the same upstream corpus), their results are
//     unioned and deduplicated by (url, text), and the reranker orders the
//     fused set.
//   - keyword limit > 0: vector search first, then keyword search re-filters
//     the vector results as its candidate pool.
//   - otherwise: raw vector results.
//
// With both the vector and keyword limits at zero and reranking off there is
// nothing to retrieve and the evidence set is empty.
func (r *Retriever) Retrieve(ctx context.Context, bot *domain.Chatbot, question string) []domain.Chunk {
	if bot.ApplyReranking {
		return r.retrieveReranked(ctx, bot, question)
	}

	if bot.ReferenceLimit <= 0 && bot.BM25Limit <= 0 {
		return nil
	}

	hits := r.search.VectorSearch(ctx, bot.APIKey, bot.CorpusNames, bot.Encoder, question, bot.Similarity, bot.ReferenceLimit, bot.Threshold)
	chunks := hitChunks(hits)

	if bot.BM25Limit > 0 {
		return r.search.KeywordSearch(ctx, bot.APIKey, nil, chunks, bot.BM25Limit, question)
	}
	return chunks
}

// retrieveReranked runs the union-and-rerank path. Vector and keyword search
// have no data dependency here, so they are issued concurrently.
func (r *Retriever) retrieveReranked(ctx context.Context, bot *domain.Chatbot, question string) []domain.Chunk {
	var (
		wg      sync.WaitGroup
		hits    []domain.VectorHit
		lexical []domain.Chunk
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		hits = r.search.VectorSearch(ctx, bot.APIKey, bot.CorpusNames, bot.Encoder, question, bot.Similarity, bot.ReferenceLimit, bot.Threshold)
	}()
	go func() {
		defer wg.Done()
		lexical = r.search.KeywordSearch(ctx, bot.APIKey, bot.CorpusNames, nil, bot.BM25Limit, question)
	}()
	wg.Wait()

	fused := domain.DedupeChunks(append(hitChunks(hits), lexical...))
	if len(fused) == 0 {
		return nil
	}

	reranked := r.search.Rerank(ctx, bot, fused, question)
	if len(reranked) == 0 {
		r.log.Warn("reranker returned no chunks")
	}
	return reranked
}

func hitChunks(hits []domain.VectorHit) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, domain.Chunk{URL: h.URL, Text: h.Text})
	}
	return chunks
}
