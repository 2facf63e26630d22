package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/pantrychef/backend/internal/matcher"
	"github.com/pageza/pantrychef/backend/internal/model"
)

// RecipeService handles read access to imported recipes
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func (s *RecipeService) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipe summaries, optionally filtered by title
func (s *RecipeService) ListRecipes(ctx context.Context, query string, page, pageSize int) ([]model.RecipeSummary, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Recipe{})
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(title) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(query))+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []model.Recipe
	err := q.Select("id, title, ner").
		Order("title, id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.RecipeSummary, len(recipes))
	for i, r := range recipes {
		out[i] = r.Summary()
	}
	return out, total, nil
}

// FindCandidates returns every recipe whose NER list may contain one of the
// tokens. PostgreSQL checks exact JSONB containment; other dialects use a
// substring match on the stored JSON, which admits false positives that the
// ranker discards.
func (s *RecipeService) FindCandidates(ctx context.Context, tokens []string) ([]matcher.Candidate, error) {
	set, err := matcher.NormalizeRequest(tokens)
	if err != nil {
		return nil, err
	}
	sorted := make([]string, 0, len(set))
	for tok := range set {
		sorted = append(sorted, tok)
	}
	sort.Strings(sorted)

	conds := make([]string, 0, len(sorted))
	args := make([]interface{}, 0, len(sorted))
	for _, tok := range sorted {
		if s.isPostgres() {
			b, err := json.Marshal([]string{tok})
			if err != nil {
				return nil, err
			}
			conds = append(conds, "ner @> ?::jsonb")
			args = append(args, string(b))
		} else {
			conds = append(conds, "ner LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(tok)+"%")
		}
	}

	var recipes []model.Recipe
	err = s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("id, title, link, ner").
		Where(strings.Join(conds, " OR "), args...).
		Order("id").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]matcher.Candidate, len(recipes))
	for i, r := range recipes {
		candidates[i] = matcher.Candidate{ID: r.ID, Title: r.Title, Link: r.Link, NER: r.NER}
	}
	return candidates, nil
}

// SimilarRecipes returns recipes with ingredient lists close to the given
// recipe's. PostgreSQL orders by embedding distance; other dialects rank
// by NER overlap.
func (s *RecipeService) SimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]model.RecipeSummary, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	if s.isPostgres() {
		var recipes []model.Recipe
		err := s.db.WithContext(ctx).
			Select("id, title, ner").
			Where("id <> ?", id).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{recipe.Embedding}},
			}).
			Limit(limit).
			Find(&recipes).Error
		if err != nil {
			return nil, err
		}
		out := make([]model.RecipeSummary, len(recipes))
		for i, r := range recipes {
			out[i] = r.Summary()
		}
		return out, nil
	}

	if len(recipe.NER) == 0 {
		return []model.RecipeSummary{}, nil
	}
	candidates, err := s.FindCandidates(ctx, recipe.NER)
	if errors.Is(err, matcher.ErrMissingIngredients) {
		return []model.RecipeSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]matcher.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	ranked, err := matcher.Rank(recipe.NER, candidates, limit+1)
	if err != nil {
		return nil, err
	}

	out := make([]model.RecipeSummary, 0, limit)
	for _, r := range ranked {
		if r.ID == id || len(out) == limit {
			continue
		}
		out = append(out, model.RecipeSummary{ID: r.ID, Title: r.Title, NER: byID[r.ID].NER})
	}
	return out, nil
}

// Vocabulary returns every distinct NER token, sorted
func (s *RecipeService) Vocabulary(ctx context.Context) ([]string, error) {
	if s.isPostgres() {
		var tokens []string
		err := s.db.WithContext(ctx).
			Raw("SELECT DISTINCT jsonb_array_elements_text(ner) AS token FROM recipes ORDER BY token").
			Scan(&tokens).Error
		return tokens, err
	}

	seen := make(map[string]struct{})
	var batch []model.Recipe
	err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("id, ner").
		FindInBatches(&batch, 1000, func(tx *gorm.DB, _ int) error {
			for _, r := range batch {
				for _, tok := range r.NER {
					if tok = matcher.NormalizeToken(tok); tok != "" {
						seen[tok] = struct{}{}
					}
				}
			}
			return nil
		}).Error
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
