package domain

// VectorHit is one vector-search result: source URL, chunk text and the
// relevance score reported by the search service.
type VectorHit struct {
	URL   string
	Text  string
	Score float64
}

// Chunk is one evidence chunk fed into prompt assembly. The (URL, Text) pair
// is the deduplication key during fusion.
type Chunk struct {
	URL  string
	Text string
}

// DedupeChunks returns chunks with duplicate (URL, Text) pairs removed. The
// result order is the first-seen order of the input; callers that need a
// relevance order rerank afterwards.
func DedupeChunks(chunks []Chunk) []Chunk {
	seen := make(map[Chunk]struct{}, len(chunks))
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
