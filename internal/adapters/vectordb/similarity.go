package vectordb

import (
	"math"
	"sort"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

// rankTopK scores every entry against query and keeps the topK best.
// Entries must be in insertion order; equal scores keep that order.
func rankTopK(query []float32, entries []entities.IndexEntry, topK int) []entities.ScoredDocument {
	if topK <= 0 {
		return nil
	}

	results := make([]entities.ScoredDocument, len(entries))
	for i, e := range entries {
		results[i] = entities.ScoredDocument{
			Document: e.Document,
			Score:    cosineSimilarity(query, e.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
