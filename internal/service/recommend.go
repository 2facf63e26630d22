package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/matcher"
	"github.com/pageza/pantrychef/backend/internal/metrics"
)

const recommendCachePrefix = "recommend:"

// RecommendService ranks stored recipes against a user's ingredients
type RecommendService struct {
	recipes    IRecipeService
	cache      *redis.Client
	cacheTTL   time.Duration
	maxResults int
	logger     *zap.Logger
}

// NewRecommendService creates a RecommendService. cache may be nil.
func NewRecommendService(recipes IRecipeService, cache *redis.Client, cacheTTL time.Duration, maxResults int, logger *zap.Logger) *RecommendService {
	if maxResults <= 0 {
		maxResults = matcher.MaxResults
	}
	return &RecommendService{
		recipes:    recipes,
		cache:      cache,
		cacheTTL:   cacheTTL,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Recommend returns at most maxResults recipes ordered by match
// percentage, then match count, then storage order.
func (s *RecommendService) Recommend(ctx context.Context, ingredients []string) ([]matcher.MatchResult, error) {
	requested, err := matcher.NormalizeRequest(ingredients)
	if err != nil {
		return nil, err
	}
	key := cacheKey(requested)

	if results, ok := s.cached(ctx, key); ok {
		metrics.RecordCacheHit()
		return results, nil
	}
	if s.cache != nil {
		metrics.RecordCacheMiss()
	}

	candidates, err := s.recipes.FindCandidates(ctx, ingredients)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := matcher.Rank(ingredients, candidates, s.maxResults)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRecommendation(len(candidates), len(results), time.Since(start))

	s.store(ctx, key, results)
	return results, nil
}

func (s *RecommendService) cached(ctx context.Context, key string) ([]matcher.MatchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("recommend cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var results []matcher.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		s.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return results, true
}

func (s *RecommendService) store(ctx context.Context, key string, results []matcher.MatchResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("recommend cache write failed", zap.Error(err))
	}
}

// cacheKey is stable for any ordering or duplication of the same tokens.
func cacheKey(requested map[string]struct{}) string {
	tokens := make([]string, 0, len(requested))
	for tok := range requested {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	sum := sha256.Sum256([]byte(strings.Join(tokens, "\x00")))
	return recommendCachePrefix + hex.EncodeToString(sum[:])
}
