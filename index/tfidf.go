// Package index provides the lexical TF-IDF model built over the
// conversation units at startup.
package index

import (
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const defaultCacheSize = 512

// Index is read-only after New and safe for concurrent use.
type Index struct {
	idf    map[string]float64
	docs   []map[string]float64 // L2-normalised tf-idf vector per document
	cache  *lru.Cache
	logger *zap.Logger
}

// New builds an index over docs; position i of every similarity result
// refers to docs[i]. An empty corpus is valid and always scores zero.
func New(docs []string, cacheSize int, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokenized[i] = Tokenize(doc)
		seen := make(map[string]struct{}, len(tokenized[i]))
		for _, term := range tokenized[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	idx := &Index{
		idf:    idf,
		docs:   make([]map[string]float64, len(docs)),
		cache:  cache,
		logger: logger,
	}
	for i, terms := range tokenized {
		idx.docs[i] = idx.vector(terms)
	}

	logger.Info("Lexical index built",
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", len(idf)))
	return idx, nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Similarity returns the cosine similarity between query and every
// document, aligned by position. Results are memoised per normalised
// query; the returned slice is shared and must not be modified.
func (idx *Index) Similarity(query string) []float64 {
	terms := Tokenize(query)
	key := strings.Join(terms, " ")
	if cached, ok := idx.cache.Get(key); ok {
		return cached.([]float64)
	}

	scores := make([]float64, len(idx.docs))
	q := idx.vector(terms)
	if len(q) > 0 {
		for i, doc := range idx.docs {
			scores[i] = dot(q, doc)
		}
	}
	idx.cache.Add(key, scores)
	return scores
}

// vector computes the normalised tf-idf weights of terms. Terms outside
// the corpus vocabulary carry no weight.
func (idx *Index) vector(terms []string) map[string]float64 {
	if len(terms) == 0 {
		return nil
	}
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, count := range counts {
		weight, ok := idx.idf[term]
		if !ok {
			continue
		}
		w := float64(count) / float64(len(terms)) * weight
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	// guard against float drift past 1 for identical vectors
	return math.Min(sum, 1)
}
