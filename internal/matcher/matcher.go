// Package matcher ranks candidate recipes by how many of the requested
// ingredients they use.
//
// Matching is exact string comparison after trimming surrounding whitespace
// and NFC normalization; it is case-sensitive. Results are ordered by match
// percentage, then match count, both descending, then by input order.
package matcher

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxResults is the number of results returned when no explicit limit is given.
const MaxResults = 50

// ErrMissingIngredients is returned when the request holds no usable ingredient.
var ErrMissingIngredients = errors.New("missing ingredients")

// Candidate is a recipe as seen by the ranker.
type Candidate struct {
	ID    uuid.UUID
	Title string
	Link  string
	NER   []string
}

// MatchResult annotates a recipe with its overlap against the request.
type MatchResult struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	MatchCount       int       `json:"match_count"`
	TotalIngredients int       `json:"total_ingredients"`
	MatchPercentage  float64   `json:"match_percentage"`
	Link             string    `json:"link"`
}

// NormalizeToken applies the comparison transform to a single ingredient.
func NormalizeToken(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeRequest turns the raw request into a set of tokens.
func NormalizeRequest(ingredients []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		if tok := NormalizeToken(ing); tok != "" {
			set[tok] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil, ErrMissingIngredients
	}
	return set, nil
}

// Score computes the match statistics of one candidate. ok is false when the
// candidate has no usable NER tokens or shares none with the request.
func Score(requested map[string]struct{}, c Candidate) (MatchResult, bool) {
	ner := make(map[string]struct{}, len(c.NER))
	for _, n := range c.NER {
		if tok := NormalizeToken(n); tok != "" {
			ner[tok] = struct{}{}
		}
	}
	if len(ner) == 0 {
		return MatchResult{}, false
	}

	count := 0
	for tok := range ner {
		if _, ok := requested[tok]; ok {
			count++
		}
	}
	if count == 0 {
		return MatchResult{}, false
	}

	return MatchResult{
		ID:               c.ID,
		Title:            c.Title,
		Link:             c.Link,
		MatchCount:       count,
		TotalIngredients: len(ner),
		MatchPercentage:  Round(100*float64(count)/float64(len(ner)), 2),
	}, true
}

// Rank scores every candidate and returns at most limit results.
// A limit of zero or less means MaxResults.
func Rank(requested []string, candidates []Candidate, limit int) ([]MatchResult, error) {
	set, err := NormalizeRequest(requested)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = MaxResults
	}

	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if r, ok := Score(set, c); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchPercentage != results[j].MatchPercentage {
			return results[i].MatchPercentage > results[j].MatchPercentage
		}
		return results[i].MatchCount > results[j].MatchCount
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
