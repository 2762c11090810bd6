package retrieval

import (
	"math"
	"sort"
	"strings"

	"docqa/internal/domain"
)

const (
	DefaultTopK     = 2
	DefaultMinScore = 0.0
)

// Vectors looks up trained word vectors. Missing words report false.
type Vectors interface {
	Vector(word string) ([]float64, bool)
}

// Tokenizer must be the one the vectors were trained with.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Ranker selects the chunks most similar to a query.
type Ranker struct {
	tokenizer Tokenizer
	topK      int
	minScore  float64
}

func NewRanker(tokenizer Tokenizer, topK int, minScore float64) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{tokenizer: tokenizer, topK: topK, minScore: minScore}
}

// Rank scores every chunk against query and returns at most topK chunks,
// best first, whose score is strictly above the floor. An empty result
// means no relevant context and is not an error.
func (r *Ranker) Rank(query string, vectors Vectors, chunks []domain.Chunk) []domain.ScoredChunk {
	scored := r.ScoreAll(query, vectors, chunks)
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	k := min(r.topK, len(scored))
	out := make([]domain.ScoredChunk, 0, k)
	for _, sc := range scored[:k] {
		if sc.Score > r.minScore {
			out = append(out, sc)
		}
	}
	return out
}

// ScoreAll returns every chunk with its score, in document order.
func (r *Ranker) ScoreAll(query string, vectors Vectors, chunks []domain.Chunk) []domain.ScoredChunk {
	queryTokens := r.tokenizer.Tokenize(query)
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: c,
			Score: Score(queryTokens, r.tokenizer.Tokenize(c.Content), vectors),
		}
	}
	return scored
}

// Score is the mean cosine similarity between each in-vocabulary query
// token and the centroid of the chunk's in-vocabulary tokens. It is 0
// when no comparison could be made.
func Score(queryTokens, docTokens []string, vectors Vectors) float64 {
	centroid := meanVector(docTokens, vectors)
	if centroid == nil {
		return 0
	}
	centroidNorm := norm(centroid)

	sum, n := 0.0, 0
	for _, w := range queryTokens {
		v, ok := vectors.Vector(w)
		if !ok {
			continue
		}
		vn := norm(v)
		if vn == 0 || centroidNorm == 0 {
			continue
		}
		sum += dot(v, centroid) / (vn * centroidNorm)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// JoinContext concatenates chunk contents with newlines, preserving order.
func JoinContext(chunks []domain.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, sc := range chunks {
		parts[i] = sc.Chunk.Content
	}
	return strings.Join(parts, "\n")
}

func meanVector(tokens []string, vectors Vectors) []float64 {
	var mean []float64
	n := 0
	for _, w := range tokens {
		v, ok := vectors.Vector(w)
		if !ok {
			continue
		}
		if mean == nil {
			mean = make([]float64, len(v))
		}
		for i := range mean {
			mean[i] += v[i]
		}
		n++
	}
	for i := range mean {
		mean[i] /= float64(n)
	}
	return mean
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
