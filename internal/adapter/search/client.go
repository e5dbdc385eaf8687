// Package search provides the client for the embedding/search service. One
// endpoint serves vector search, keyword (best-match) search and reranking,
// discriminated by a method field in the request body.
//
// Retrieval failures are never fatal to an answer request: every transport
// fault, non-200 status or malformed body degrades to an empty result and a
// logged warning, and the pipeline continues with whatever evidence it has.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tidechat/answerd/internal/domain"
)

// Method discriminators understood by the search service.
const (
	methodVectorSearch  = "vector_search"
	methodKeywordSearch = "keyword_search"
	methodRerank        = "rerank"
)

// Client is the embedding/search service client.
type Client struct {
	url        string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a new search client.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logrus.WithField("component", "search"),
	}
}

// vectorSearchRequest is the wire request for a vector similarity search.
type vectorSearchRequest struct {
	APIKey      string   `json:"api_key"`
	Names       []string `json:"names"`
	Method      string   `json:"method"`
	EncoderName string   `json:"encoder_name"`
	Query       string   `json:"query"`
	OrderBy     string   `json:"order_by"`
	Threshold   float64  `json:"threshold"`
	Limit       int      `json:"limit"`
}

// keywordSearchRequest is the wire request for a best-match keyword search.
// Exactly one of Names (fresh corpus query) and Chunks (re-filter of an
// existing candidate pool) is set; the other is null.
type keywordSearchRequest struct {
	APIKey string      `json:"api_key"`
	Method string      `json:"method"`
	Names  []string    `json:"names"`
	Chunks [][2]string `json:"chunks"`
	Limit  int         `json:"limit"`
	Query  string      `json:"query"`
}

// rerankRequest is the wire request for reranking a candidate chunk list.
type rerankRequest struct {
	APIKey         string      `json:"api_key"`
	Method         string      `json:"method"`
	Reranker       string      `json:"reranker"`
	RerankingLimit int         `json:"reranking_limit"`
	Query          string      `json:"query"`
	Chunks         [][2]string `json:"chunks"`
}

// searchResponse is the common response envelope. Content items are arrays:
// [url, text, score] for vector search, [url, text] otherwise.
type searchResponse struct {
	Content [][]any `json:"content"`
}

// VectorSearch runs a dense vector similarity search over the named corpora.
func (c *Client) VectorSearch(ctx context.Context, apiKey string, names []string, encoder, query, orderBy string, limit int, threshold float64) []domain.VectorHit {
	req := vectorSearchRequest{
		APIKey:      apiKey,
		Names:       names,
		Method:      methodVectorSearch,
		EncoderName: encoder,
		Query:       query,
		OrderBy:     orderBy,
		Threshold:   threshold,
		Limit:       limit,
	}

	content, err := c.post(ctx, req)
	if err != nil {
		c.log.WithError(err).Warn("vector search failed, continuing with no evidence")
		return nil
	}

	hits := make([]domain.VectorHit, 0, len(content))
	for _, item := range content {
		if len(item) < 3 {
			continue
		}
		url, uok := item[0].(string)
		text, tok := item[1].(string)
		score, sok := item[2].(float64)
		if !uok || !tok || !sok {
			continue
		}
		hits = append(hits, domain.VectorHit{URL: url, Text: text, Score: score})
	}
	return hits
}

// KeywordSearch runs a best-match keyword search. With names set it queries
// the corpora directly; with chunks set it re-filters the given candidate
// pool.
func (c *Client) KeywordSearch(ctx context.Context, apiKey string, names []string, chunks []domain.Chunk, limit int, query string) []domain.Chunk {
	req := keywordSearchRequest{
		APIKey: apiKey,
		Method: methodKeywordSearch,
		Names:  names,
		Chunks: chunkPairs(chunks),
		Limit:  limit,
		Query:  query,
	}

	content, err := c.post(ctx, req)
	if err != nil {
		c.log.WithError(err).Warn("keyword search failed, continuing with no evidence")
		return nil
	}
	return pairChunks(content)
}

// Rerank re-scores the candidate chunks against the question, most relevant
// first, truncated to the chatbot's reranking limit.
func (c *Client) Rerank(ctx context.Context, bot *domain.Chatbot, chunks []domain.Chunk, query string) []domain.Chunk {
	req := rerankRequest{
		APIKey:         bot.APIKey,
		Method:         methodRerank,
		Reranker:       bot.Reranker,
		RerankingLimit: bot.RerankingLimit,
		Query:          query,
		Chunks:         chunkPairs(chunks),
	}

	content, err := c.post(ctx, req)
	if err != nil {
		c.log.WithError(err).Warn("rerank failed, continuing with no evidence")
		return nil
	}
	return pairChunks(content)
}

// post sends one search service request and decodes the content payload.
func (c *Client) post(ctx context.Context, payload any) ([][]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.Content, nil
}

func chunkPairs(chunks []domain.Chunk) [][2]string {
	if chunks == nil {
		return nil
	}
	pairs := make([][2]string, 0, len(chunks))
	for _, ch := range chunks {
		pairs = append(pairs, [2]string{ch.URL, ch.Text})
	}
	return pairs
}

func pairChunks(content [][]any) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(content))
	for _, item := range content {
		if len(item) < 2 {
			continue
		}
		url, uok := item[0].(string)
		text, tok := item[1].(string)
		if !uok || !tok {
			continue
		}
		chunks = append(chunks, domain.Chunk{URL: url, Text: text})
	}
	return chunks
}
