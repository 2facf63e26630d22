package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
)

const defaultSuggestLimit = 10

// SuggestService completes ingredient names against the NER vocabulary of
// the imported recipes. The vocabulary is loaded lazily and refreshed after
// refreshEvery.
type SuggestService struct {
	recipes      IRecipeService
	refreshEvery time.Duration
	logger       *zap.Logger

	mu       sync.RWMutex
	vocab    []string
	loadedAt time.Time
}

func NewSuggestService(recipes IRecipeService, refreshEvery time.Duration, logger *zap.Logger) *SuggestService {
	return &SuggestService{
		recipes:      recipes,
		refreshEvery: refreshEvery,
		logger:       logger,
	}
}

// Suggest returns up to limit vocabulary entries matching query. Prefix
// matches come first, then fuzzy matches by edit distance.
func (s *SuggestService) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	vocab, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}

	ranks := fuzzy.RankFindNormalizedFold(query, vocab)
	lower := strings.ToLower(query)
	sort.SliceStable(ranks, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(ranks[i].Target), lower)
		pj := strings.HasPrefix(strings.ToLower(ranks[j].Target), lower)
		if pi != pj {
			return pi
		}
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out, nil
}

func (s *SuggestService) vocabulary(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	vocab, loadedAt := s.vocab, s.loadedAt
	s.mu.RUnlock()
	if vocab != nil && (s.refreshEvery <= 0 || time.Since(loadedAt) < s.refreshEvery) {
		return vocab, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vocab != nil && s.loadedAt != loadedAt {
		return s.vocab, nil
	}

	fresh, err := s.recipes.Vocabulary(ctx)
	if err != nil {
		if s.vocab != nil {
			s.logger.Warn("vocabulary refresh failed, serving stale copy", zap.Error(err))
			return s.vocab, nil
		}
		return nil, err
	}
	if fresh == nil {
		fresh = []string{}
	}
	s.vocab = fresh
	s.loadedAt = time.Now()
	s.logger.Debug("ingredient vocabulary loaded", zap.Int("size", len(fresh)))
	return fresh, nil
}
