package matcher

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(title string, ner ...string) Candidate {
	return Candidate{ID: uuid.New(), Title: title, Link: "www.example.com/" + title, NER: ner}
}

func TestRankOrdersByPercentage(t *testing.T) {
	a := candidate("pancakes", "egg", "milk", "flour", "sugar")
	b := candidate("omelette", "egg")

	results, err := Rank([]string{"egg", "milk"}, []Candidate{a, b}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, b.ID, results[0].ID)
	assert.Equal(t, 1, results[0].MatchCount)
	assert.Equal(t, 1, results[0].TotalIngredients)
	assert.Equal(t, 100.0, results[0].MatchPercentage)

	assert.Equal(t, a.ID, results[1].ID)
	assert.Equal(t, 2, results[1].MatchCount)
	assert.Equal(t, 4, results[1].TotalIngredients)
	assert.Equal(t, 50.0, results[1].MatchPercentage)
	assert.Equal(t, "www.example.com/pancakes", results[1].Link)
}

func TestRankSkipsEmptyNER(t *testing.T) {
	results, err := Rank([]string{"egg"}, []Candidate{candidate("empty"), candidate("blank", "", "  ")}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankRejectsEmptyRequest(t *testing.T) {
	for _, req := range [][]string{nil, {}, {"", "   "}} {
		results, err := Rank(req, []Candidate{candidate("x", "egg")}, 0)
		assert.ErrorIs(t, err, ErrMissingIngredients)
		assert.Nil(t, results)
	}
}

func TestRankExcludesZeroOverlap(t *testing.T) {
	results, err := Rank([]string{"egg"}, []Candidate{candidate("salad", "lettuce", "tomato")}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankTieBreaksOnMatchCount(t *testing.T) {
	small := candidate("small", "egg", "ham")
	large := candidate("large", "egg", "milk", "ham", "cheese")

	results, err := Rank([]string{"egg", "milk"}, []Candidate{small, large}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 50.0, results[0].MatchPercentage)
	assert.Equal(t, 50.0, results[1].MatchPercentage)
	assert.Equal(t, large.ID, results[0].ID)
	assert.Equal(t, small.ID, results[1].ID)
}

func TestRankKeepsInputOrderOnFullTie(t *testing.T) {
	first := candidate("first", "egg", "salt")
	second := candidate("second", "egg", "pepper")

	results, err := Rank([]string{"egg"}, []Candidate{first, second}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].ID)
	assert.Equal(t, second.ID, results[1].ID)
}

func TestRankNormalization(t *testing.T) {
	// "é" composed vs. decomposed
	composed := "caf\u00e9 au lait"
	decomposed := "cafe\u0301 au lait"

	results, err := Rank([]string{"  " + decomposed + "\t"}, []Candidate{candidate("drink", composed)}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 100.0, results[0].MatchPercentage)

	// case-sensitive
	results, err = Rank([]string{"Egg"}, []Candidate{candidate("x", "egg")}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankDeduplicatesNER(t *testing.T) {
	results, err := Rank([]string{"egg", "egg"}, []Candidate{candidate("x", "egg", "egg", "milk")}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].MatchCount)
	assert.Equal(t, 2, results[0].TotalIngredients)
	assert.Equal(t, 50.0, results[0].MatchPercentage)
}

func TestRankRoundsPercentage(t *testing.T) {
	results, err := Rank([]string{"a"}, []Candidate{candidate("x", "a", "b", "c")}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 33.33, results[0].MatchPercentage)

	results, err = Rank([]string{"a", "b"}, []Candidate{candidate("x", "a", "b", "c")}, 0)
	require.NoError(t, err)
	assert.Equal(t, 66.67, results[0].MatchPercentage)
}

func TestRankTruncates(t *testing.T) {
	candidates := make([]Candidate, 0, MaxResults+25)
	for i := 0; i < MaxResults+25; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("r%d", i), "egg", fmt.Sprintf("x%d", i)))
	}

	results, err := Rank([]string{"egg"}, candidates, 0)
	require.NoError(t, err)
	assert.Len(t, results, MaxResults)

	results, err = Rank([]string{"egg"}, candidates, 10)
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestRankProperties(t *testing.T) {
	vocab := []string{"egg", "milk", "flour", "sugar", "butter", "salt", "pepper", "onion", "garlic", "rice", "chicken", ""}
	rng := rand.New(rand.NewSource(42))

	pick := func(n int) []string {
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, vocab[rng.Intn(len(vocab))])
		}
		return out
	}

	for round := 0; round < 200; round++ {
		requested := pick(1 + rng.Intn(4))
		if _, err := NormalizeRequest(requested); err != nil {
			continue
		}

		candidates := make([]Candidate, 0, 80)
		for i := 0; i < 80; i++ {
			candidates = append(candidates, candidate(fmt.Sprintf("r%d", i), pick(rng.Intn(7))...))
		}

		results, err := Rank(requested, candidates, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), MaxResults)

		for i, r := range results {
			assert.GreaterOrEqual(t, r.MatchCount, 1)
			assert.Greater(t, r.MatchPercentage, 0.0)
			assert.LessOrEqual(t, r.MatchPercentage, 100.0)
			assert.LessOrEqual(t, r.MatchCount, r.TotalIngredients)
			if i > 0 {
				prev := results[i-1]
				assert.GreaterOrEqual(t, prev.MatchPercentage, r.MatchPercentage)
				if prev.MatchPercentage == r.MatchPercentage {
					assert.GreaterOrEqual(t, prev.MatchCount, r.MatchCount)
				}
			}
		}

		again, err := Rank(requested, candidates, 0)
		require.NoError(t, err)
		assert.Equal(t, results, again)
	}
}
