package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidechat/answerd/internal/domain"
)

// fakeSearch records calls and plays back canned results.
type fakeSearch struct {
	vectorHits    []domain.VectorHit
	keywordChunks []domain.Chunk
	rerankChunks  []domain.Chunk

	vectorCalls  int
	keywordCalls int
	rerankCalls  int

	keywordNames []string
	keywordPool  []domain.Chunk
	rerankInput  []domain.Chunk
}

func (f *fakeSearch) VectorSearch(ctx context.Context, apiKey string, names []string, encoder, query, orderBy string, limit int, threshold float64) []domain.VectorHit {
	f.vectorCalls++
	return f.vectorHits
}

func (f *fakeSearch) KeywordSearch(ctx context.Context, apiKey string, names []string, chunks []domain.Chunk, limit int, query string) []domain.Chunk {
	f.keywordCalls++
	f.keywordNames = names
	f.keywordPool = chunks
	return f.keywordChunks
}

func (f *fakeSearch) Rerank(ctx context.Context, bot *domain.Chatbot, chunks []domain.Chunk, query string) []domain.Chunk {
	f.rerankCalls++
	f.rerankInput = chunks
	return f.rerankChunks
}

func TestRetrieveVectorOnly(t *testing.T) {
	fake := &fakeSearch{
		vectorHits: []domain.VectorHit{{URL: "u1", Text: "a", Score: 0.1}},
	}
	r := New(fake)
	bot := &domain.Chatbot{ReferenceLimit: 5}

	chunks := r.Retrieve(context.Background(), bot, "q")

	require.Len(t, chunks, 1)
	assert.Equal(t, domain.Chunk{URL: "u1", Text: "a"}, chunks[0])
	assert.Equal(t, 1, fake.vectorCalls)
	assert.Equal(t, 0, fake.keywordCalls)
	assert.Equal(t, 0, fake.rerankCalls)
}

func TestRetrieveKeywordRefiltersVectorResults(t *testing.T) {
	fake := &fakeSearch{
		vectorHits:    []domain.VectorHit{{URL: "u1", Text: "a", Score: 0.1}, {URL: "u2", Text: "b", Score: 0.2}},
		keywordChunks: []domain.Chunk{{URL: "u2", Text: "b"}},
	}
	r := New(fake)
	bot := &domain.Chatbot{ReferenceLimit: 5, BM25Limit: 1}

	chunks := r.Retrieve(context.Background(), bot, "q")

	require.Len(t, chunks, 1)
	assert.Equal(t, "u2", chunks[0].URL)
	// Keyword search must re-filter the vector pool, not query the corpus.
	assert.Nil(t, fake.keywordNames)
	assert.Len(t, fake.keywordPool, 2)
}

func TestRetrieveRerankingFusesAndDedupes(t *testing.T) {
	fake := &fakeSearch{
		vectorHits:    []domain.VectorHit{{URL: "u1", Text: "A", Score: 0.1}},
		keywordChunks: []domain.Chunk{{URL: "u1", Text: "A"}, {URL: "u2", Text: "B"}},
		rerankChunks:  []domain.Chunk{{URL: "u2", Text: "B"}, {URL: "u1", Text: "A"}},
	}
	r := New(fake)
	bot := &domain.Chatbot{ReferenceLimit: 5, BM25Limit: 5, ApplyReranking: true, CorpusNames: []string{"docs"}}

	chunks := r.Retrieve(context.Background(), bot, "q")

	// The fused set fed to the reranker contains the overlapping (url, text)
	// pair exactly once.
	require.Len(t, fake.rerankInput, 2)
	assert.Contains(t, fake.rerankInput, domain.Chunk{URL: "u1", Text: "A"})
	assert.Contains(t, fake.rerankInput, domain.Chunk{URL: "u2", Text: "B"})

	// Keyword search in rerank mode queries the corpus, not a chunk pool.
	assert.Equal(t, []string{"docs"}, fake.keywordNames)
	assert.Nil(t, fake.keywordPool)

	require.Len(t, chunks, 2)
	assert.Equal(t, "u2", chunks[0].URL)
}

func TestRetrieveRerankingSkipsRerankOnEmptyFusion(t *testing.T) {
	fake := &fakeSearch{}
	r := New(fake)
	bot := &domain.Chatbot{ApplyReranking: true}

	chunks := r.Retrieve(context.Background(), bot, "q")

	assert.Empty(t, chunks)
	assert.Equal(t, 0, fake.rerankCalls)
}

func TestRetrieveBothLimitsZeroReturnsEmpty(t *testing.T) {
	fake := &fakeSearch{
		vectorHits: []domain.VectorHit{{URL: "u1", Text: "a", Score: 0.1}},
	}
	r := New(fake)
	bot := &domain.Chatbot{}

	chunks := r.Retrieve(context.Background(), bot, "q")

	assert.Empty(t, chunks)
	assert.Equal(t, 0, fake.vectorCalls)
}

func TestDedupeChunksOrderIndependent(t *testing.T) {
	a := []domain.Chunk{{URL: "u1", Text: "A"}, {URL: "u2", Text: "B"}, {URL: "u1", Text: "A"}}
	b := []domain.Chunk{{URL: "u1", Text: "A"}, {URL: "u1", Text: "A"}, {URL: "u2", Text: "B"}}

	da := domain.DedupeChunks(a)
	db := domain.DedupeChunks(b)

	assert.ElementsMatch(t, da, db)
	assert.Len(t, da, 2)
}
