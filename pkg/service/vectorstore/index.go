package vectorstore

import (
	"math"
	"sort"

	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// Index holds an embedded-document collection in memory and answers
// nearest-neighbor queries by cosine similarity. It is immutable after
// construction and safe for concurrent readers.
type Index struct {
	docs []model.EmbeddedDocument
}

// NewIndex builds an index over docs. The slice is kept as-is; callers must
// not mutate it afterwards.
func NewIndex(docs []model.EmbeddedDocument) *Index {
	return &Index{docs: docs}
}

// Len returns the number of indexed documents
func (x *Index) Len() int {
	return len(x.docs)
}

// Search scores every candidate against query, filters by category when one
// is given, and returns the topK best matches in descending similarity order.
// Ties keep the original collection order. An empty index yields an empty
// result, not an error.
func (x *Index) Search(query []float32, topK int, category types.Category) []model.ScoredDocument {
	if topK <= 0 {
		return nil
	}

	results := make([]model.ScoredDocument, 0, len(x.docs))
	for i := range x.docs {
		doc := &x.docs[i]
		if category != types.CategoryAny && doc.Category() != category {
			continue
		}
		results = append(results, model.ScoredDocument{
			Document:   doc,
			Similarity: CosineSimilarity(query, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Mismatched lengths or a
// zero-magnitude vector yield 0 rather than NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
