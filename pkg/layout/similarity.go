package layout

import (
	"math"
	"strings"

	"github.com/openagora/agora/pkg/ibis"
)

// minSignificantWordLength filters out articles, pronouns and other
// short words before the lexical overlap is computed.
const minSignificantWordLength = 4

// TitleSimilarity estimates how related two titles are using the
// Jaccard index over their significant words. It is an intentionally
// crude proxy for use when no embedding vectors are available.
// Returns a value in [0, 1]; titles with no significant words score 0.
func TitleSimilarity(a, b string) float64 {
	setA := significantWords(a)
	setB := significantWords(b)

	union := len(setA)
	intersection := 0
	for w := range setB {
		if setA[w] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// significantWords lower-cases the title, splits on whitespace, and
// keeps words longer than three characters.
func significantWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) >= minSignificantWordLength {
			words[w] = true
		}
	}
	return words
}

// EmbeddingSimilarity computes cosine similarity between two embedding
// vectors, clamped to [0, 1]. Mismatched dimensions and zero vectors
// score 0 rather than erroring.
func EmbeddingSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim))
}

// nodeSimilarity scores two nodes, preferring embeddings when both
// carry them and falling back to the lexical title proxy otherwise.
func nodeSimilarity(a, b *ibis.Node) float64 {
	if len(a.Embedding) > 0 && len(b.Embedding) > 0 {
		return EmbeddingSimilarity(a.Embedding, b.Embedding)
	}
	return TitleSimilarity(a.Title, b.Title)
}
