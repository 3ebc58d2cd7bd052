package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedCatalog(t *testing.T) (*Catalog, *stubSource) {
	t.Helper()
	source := &stubSource{foods: testFoods()}
	catalog := NewCatalog(source, domain.DefaultLexicon(), MatchConfig{})
	_, err := catalog.Reload(context.Background())
	require.NoError(t, err)
	return catalog, source
}

func TestAnalysisService_Analyze_SpacingVariantsShareOutput(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	cache := newMockCache()
	svc := NewAnalysisService(catalog, cache, AnalysisServiceConfig{})
	ctx := context.Background()

	first, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "quinoa   salad, rice"})
	require.NoError(t, err)
	assert.Equal(t, []domain.UnresolvedFragment{{Text: "quinoa salad"}}, first.Unresolved)

	second, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "quinoa salad, rice"})
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Unresolved, second.Unresolved)

	uncached := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})
	fresh, err := uncached.Analyze(ctx, &domain.AnalyzeRequest{Text: "quinoa salad, rice"})
	require.NoError(t, err)
	assert.Equal(t, fresh.Unresolved, second.Unresolved)
	assert.Equal(t, fresh.Records, second.Records)
}

func TestNewAnalysisService_Defaults(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})

	assert.Equal(t, 2000, svc.defaultTarget)
	assert.Equal(t, "1h0m0s", svc.cacheTTL.String())
}

func TestAnalysisService_Analyze(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	cache := newMockCache()
	svc := NewAnalysisService(catalog, cache, AnalysisServiceConfig{})
	ctx := context.Background()

	req := &domain.AnalyzeRequest{Text: "2 slices whole wheat bread with butter and scrambled eggs"}

	analysis, err := svc.Analyze(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, SourceEngine, analysis.Source)
	assert.Equal(t, uint64(1), analysis.Generation)
	assert.Len(t, analysis.Records, 3)
	assert.NotNil(t, analysis.Unresolved)
	assert.Empty(t, analysis.Unresolved)
	assert.Equal(t, domain.Totals{Calories: 1014.2, Protein: 18.7, Carbs: 26.3, Fat: 94}, analysis.Totals)
	assert.Equal(t, 2000, analysis.Gaps.TargetCalories)
	assert.Equal(t, 1, cache.sets)

	require.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, "Scrambled Eggs", analysis.Recommendations[0].Food)
	assert.InDelta(t, 4.1, analysis.Recommendations[0].Quantity, 1e-9)
	assert.Equal(t, ServingUnit, analysis.Recommendations[0].Unit)
	assert.Equal(t, PriorityHigh, analysis.Recommendations[0].Priority)
	assert.Equal(t, "Add 81g protein", analysis.Recommendations[0].Reason)
	require.NotEmpty(t, analysis.MealPlan)
	assert.Equal(t, "Priority additions:", analysis.MealPlan[0])
	assert.Contains(t, analysis.MealPlan[len(analysis.MealPlan)-1], "Timing tip")

	t.Run("second call served from cache", func(t *testing.T) {
		cached, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "  2 Slices whole wheat bread   with butter and scrambled eggs "})
		require.NoError(t, err)

		assert.Equal(t, SourceCache, cached.Source)
		assert.Equal(t, analysis.Records, cached.Records)
		assert.Equal(t, analysis.Totals, cached.Totals)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("different target is a different entry", func(t *testing.T) {
		other, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: req.Text, TargetCalories: 2500})
		require.NoError(t, err)

		assert.Equal(t, SourceEngine, other.Source)
		assert.Equal(t, 2500, other.Gaps.TargetCalories)
		assert.Equal(t, 2, cache.sets)
	})
}

func TestAnalysisService_Analyze_Validation(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})

	tests := []struct {
		name string
		req  *domain.AnalyzeRequest
	}{
		{"nil request", nil},
		{"target too low", &domain.AnalyzeRequest{Text: "rice", TargetCalories: 800}},
		{"target too high", &domain.AnalyzeRequest{Text: "rice", TargetCalories: 5000}},
		{"text too long", &domain.AnalyzeRequest{Text: strings.Repeat("rice, ", 2000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestAnalysisService_Analyze_EmptyText(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{DefaultTargetCalories: 1800})

	analysis, err := svc.Analyze(context.Background(), &domain.AnalyzeRequest{Text: ""})
	require.NoError(t, err)

	assert.NotNil(t, analysis.Records)
	assert.Empty(t, analysis.Records)
	assert.Equal(t, domain.Totals{}, analysis.Totals)
	assert.Equal(t, 1800, analysis.Gaps.TargetCalories)
	assert.InDelta(t, 1800.0, analysis.Gaps.Calories, 1e-9)
	assert.NotNil(t, analysis.Recommendations)
	assert.Empty(t, analysis.Recommendations)
	assert.NotNil(t, analysis.MealPlan)
	assert.Empty(t, analysis.MealPlan)
}

func TestAnalysisService_Analyze_NotLoaded(t *testing.T) {
	catalog := NewCatalog(&stubSource{}, domain.DefaultLexicon(), MatchConfig{})
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})

	_, err := svc.Analyze(context.Background(), &domain.AnalyzeRequest{Text: "rice"})
	assert.ErrorIs(t, err, domain.ErrCatalogNotLoaded)
}

func TestAnalysisService_Analyze_CancelledContext(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "rice"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisService_Analyze_CacheWriteFailure(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	cache := newMockCache()
	cache.failSet = true
	svc := NewAnalysisService(catalog, cache, AnalysisServiceConfig{})

	analysis, err := svc.Analyze(context.Background(), &domain.AnalyzeRequest{Text: "1 cup rice"})
	require.NoError(t, err)
	require.Len(t, analysis.Records, 1)
	assert.InDelta(t, 300.0, analysis.Records[0].Calories, 1e-9)
}

func TestAnalysisService_ResolveFood(t *testing.T) {
	catalog, _ := newLoadedCatalog(t)
	svc := NewAnalysisService(catalog, nil, AnalysisServiceConfig{})
	ctx := context.Background()

	result, err := svc.ResolveFood(ctx, "idlis")
	require.NoError(t, err)
	assert.Equal(t, "Idli", result.Food)
	assert.Equal(t, domain.TierFuzzy, result.Tier)

	_, err = svc.ResolveFood(ctx, "quinoa")
	assert.ErrorIs(t, err, domain.ErrFoodNotFound)

	_, err = svc.ResolveFood(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAnalysisService_Reload(t *testing.T) {
	catalog, source := newLoadedCatalog(t)
	cache := newMockCache()
	svc := NewAnalysisService(catalog, cache, AnalysisServiceConfig{})
	ctx := context.Background()

	_, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "quinoa"})
	require.NoError(t, err)

	source.set(append(testFoods(), domain.ReferenceFood{Name: "Quinoa", CaloriesPer100g: 120, ProteinG: 4.4, CarbsG: 21, FatG: 1.9}), nil)

	status, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), status.Generation)
	assert.Equal(t, len(testFoods())+1, status.Foods)
	assert.Equal(t, 1, cache.purges)

	analysis, err := svc.Analyze(ctx, &domain.AnalyzeRequest{Text: "quinoa"})
	require.NoError(t, err)
	assert.Equal(t, SourceEngine, analysis.Source)
	require.Len(t, analysis.Records, 1)
	assert.Equal(t, "Quinoa", analysis.Records[0].Food)

	current, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, status.Generation, current.Generation)
}

func TestAnalysisService_Reload_Failure(t *testing.T) {
	catalog, source := newLoadedCatalog(t)
	cache := newMockCache()
	svc := NewAnalysisService(catalog, cache, AnalysisServiceConfig{})

	source.set(nil, domain.ErrReferenceTable)

	_, err := svc.Reload(context.Background())
	assert.ErrorIs(t, err, domain.ErrReferenceTable)
	assert.Equal(t, 0, cache.purges)

	status, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Generation)
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "analysis:3:2000:rice, dal\nbanana", generateCacheKey(3, 2000, "  Rice,   dal \n Banana "))
	assert.NotEqual(t, generateCacheKey(1, 2000, "rice"), generateCacheKey(2, 2000, "rice"))
	assert.NotEqual(t, generateCacheKey(1, 2000, "rice dal"), generateCacheKey(1, 2000, "rice\ndal"))
}
