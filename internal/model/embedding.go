package model

import (
	"hash/fnv"
	"math"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of the recipe embedding column
const EmbeddingDimensions = 64

// NEREmbedding returns a deterministic bag-of-ingredients embedding.
// Each lower-cased token is hashed into one of EmbeddingDimensions buckets
// with a sign taken from a second hash bit; the result is L2-normalized so
// vector distance tracks ingredient overlap.
func NEREmbedding(ner []string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	seen := make(map[string]struct{}, len(ner))
	for _, n := range ner {
		tok := strings.ToLower(strings.TrimSpace(n))
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}

		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := sum % EmbeddingDimensions
		if (sum>>32)&1 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}
