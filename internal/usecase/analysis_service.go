package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/macrolens/nutrilog/internal/domain"
)

// Accepted range for a caller-supplied daily calorie target
const (
	MinTargetCalories = 1200
	MaxTargetCalories = 3000
)

// maxTextLength bounds the meal text accepted per request
const maxTextLength = 10000

// Result sources reported on an Analysis
const (
	SourceEngine = "Engine"
	SourceCache  = "Cache"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL              time.Duration
	DefaultTargetCalories int
	EnableDebugLogging    bool
}

// CatalogStatus describes the loaded reference table
type CatalogStatus struct {
	Foods      int       `json:"foods"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loadedAt"`
}

// AnalysisService turns meal text into nutrient analyses with caching
type AnalysisService struct {
	catalog            *Catalog
	cache              domain.CacheRepository
	cacheTTL           time.Duration
	defaultTarget      int
	enableDebugLogging bool
}

// NewAnalysisService creates a new analysis service. cache may be nil to disable caching.
func NewAnalysisService(
	catalog *Catalog,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	target := config.DefaultTargetCalories
	if target == 0 {
		target = 2000
	}

	return &AnalysisService{
		catalog:            catalog,
		cache:              cache,
		cacheTTL:           cacheTTL,
		defaultTarget:      target,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Analyze resolves the foods in request.Text and computes records, totals and gaps.
// Flow: validate -> check cache -> extract and aggregate -> cache -> return.
// Empty text yields an empty analysis rather than an error.
func (s *AnalysisService) Analyze(ctx context.Context, request *domain.AnalyzeRequest) (*domain.Analysis, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	if len(request.Text) > maxTextLength {
		return nil, fmt.Errorf("%w: text longer than %d bytes", domain.ErrInvalidRequest, maxTextLength)
	}

	target := request.TargetCalories
	if target == 0 {
		target = s.defaultTarget
	}
	if target < MinTargetCalories || target > MaxTargetCalories {
		return nil, fmt.Errorf("%w: target calories must be between %d and %d",
			domain.ErrInvalidRequest, MinTargetCalories, MaxTargetCalories)
	}

	engine, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(engine.Generation(), target, request.Text)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Source = SourceCache
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, unresolved := engine.Analyze(request.Text)
	totals := SumTotals(records)
	gaps := AnalyzeGaps(totals, target)

	// Recommendations need at least one recognized food
	var recommendations []domain.Recommendation
	var mealPlan []string
	if len(records) > 0 {
		recommendations = Recommend(gaps, engine.Index())
		mealPlan = MealPlan(gaps, recommendations)
	}

	analysis := &domain.Analysis{
		Records:         nonNil(records),
		Unresolved:      nonNil(unresolved),
		Totals:          totals,
		Gaps:            gaps,
		Recommendations: nonNil(recommendations),
		MealPlan:        nonNil(mealPlan),
		Generation:      engine.Generation(),
		Source:          SourceEngine,
		AnalyzedAt:      time.Now(),
	}

	if s.enableDebugLogging {
		log.Printf("[ANALYZE] %d foods, %d unresolved, %.1f kcal, %d recommendations (generation %d)",
			len(analysis.Records), len(analysis.Unresolved), totals.Calories, len(analysis.Recommendations), analysis.Generation)
	}

	// Log but don't fail if caching fails
	if err := s.setInCache(ctx, cacheKey, analysis); err != nil {
		log.Printf("[ANALYZE] Cache write failed: %v", err)
	}

	return analysis, nil
}

// ResolveFood resolves a single food name
func (s *AnalysisService) ResolveFood(ctx context.Context, name string) (*domain.MatchResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidRequest
	}

	engine, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}

	result, ok := engine.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrFoodNotFound, name)
	}
	return &result, nil
}

// Reload rebuilds the catalog from its source and drops cached analyses
func (s *AnalysisService) Reload(ctx context.Context) (*CatalogStatus, error) {
	engine, err := s.catalog.Reload(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Purge(ctx); err != nil {
			log.Printf("[ANALYZE] Cache purge failed: %v", err)
		}
	}

	return statusOf(engine), nil
}

// Status reports the currently loaded reference table
func (s *AnalysisService) Status() (*CatalogStatus, error) {
	engine, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	return statusOf(engine), nil
}

func statusOf(engine *Engine) *CatalogStatus {
	return &CatalogStatus{
		Foods:      engine.Index().Len(),
		Generation: engine.Generation(),
		LoadedAt:   engine.LoadedAt(),
	}
}

// generateCacheKey creates a normalized cache key.
// Format: "analysis:{generation}:{target}:{normalized_text}"
func generateCacheKey(generation uint64, target int, text string) string {
	return fmt.Sprintf("analysis:%d:%d:%s", generation, target, normalizeForCacheKey(text))
}

// normalizeForCacheKey lowercases, trims and collapses whitespace runs other than
// newlines, which separate segments.
func normalizeForCacheKey(s string) string {
	lines := strings.Split(strings.ToLower(s), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// getFromCache retrieves an analysis from cache
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.Analysis, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var analysis domain.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &analysis, nil
}

// setInCache stores an analysis in cache
func (s *AnalysisService) setInCache(ctx context.Context, key string, analysis *domain.Analysis) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
