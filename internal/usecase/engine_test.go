package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Analyze(t *testing.T) {
	engine := newTestEngine()

	records, unresolved := engine.Analyze("2 slices whole wheat bread with butter and scrambled eggs, quinoa")

	require.Len(t, records, 3)
	assert.Equal(t, "Whole Wheat Bread", records[0].Food)
	assert.Equal(t, "2.0 slice", records[0].Quantity)
	assert.InDelta(t, 148.2, records[0].Calories, 1e-9)
	assert.Equal(t, []domain.UnresolvedFragment{{Text: "quinoa"}}, unresolved)
}

func TestEngine_EmptyText(t *testing.T) {
	engine := newTestEngine()

	records, unresolved := engine.Analyze("")

	assert.Empty(t, records)
	assert.Empty(t, unresolved)
}

func TestEngine_DeterministicAcrossBuilds(t *testing.T) {
	text := "Breakfast: 2 idlis with coconut chutney\nLunch: 1 cup rice, dal"

	first, _ := newTestEngine().Analyze(text)
	second, _ := newTestEngine().Analyze(text)

	assert.Equal(t, first, second)
}

func TestCatalog_CurrentBeforeReload(t *testing.T) {
	catalog := NewCatalog(&stubSource{foods: testFoods()}, domain.DefaultLexicon(), MatchConfig{})

	engine, err := catalog.Current()

	assert.Nil(t, engine)
	assert.ErrorIs(t, err, domain.ErrCatalogNotLoaded)
}

func TestCatalog_Reload(t *testing.T) {
	source := &stubSource{foods: testFoods()}
	catalog := NewCatalog(source, domain.DefaultLexicon(), MatchConfig{})

	first, err := catalog.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Generation())
	assert.Equal(t, len(testFoods()), first.Index().Len())

	current, err := catalog.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)

	t.Run("swaps in new table", func(t *testing.T) {
		source.set([]domain.ReferenceFood{{Name: "Quinoa", CaloriesPer100g: 120}}, nil)

		second, err := catalog.Reload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(2), second.Generation())

		_, ok := second.Resolve("quinoa")
		assert.True(t, ok)

		// engines already handed out keep their own table
		_, ok = first.Resolve("quinoa")
		assert.False(t, ok)
	})

	t.Run("failure keeps previous engine", func(t *testing.T) {
		loadErr := errors.New("disk gone")
		source.set(nil, loadErr)

		engine, err := catalog.Reload(context.Background())
		assert.Nil(t, engine)
		assert.ErrorIs(t, err, loadErr)
		assert.Contains(t, err.Error(), "stub")

		current, err := catalog.Current()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), current.Generation())
	})
}

func TestCatalog_ReloadIsIdempotent(t *testing.T) {
	catalog := NewCatalog(&stubSource{foods: testFoods()}, domain.DefaultLexicon(), MatchConfig{})
	text := "2 chapatis with mixed vegetable curry, banana"

	first, err := catalog.Reload(context.Background())
	require.NoError(t, err)
	second, err := catalog.Reload(context.Background())
	require.NoError(t, err)

	want, _ := first.Analyze(text)
	got, _ := second.Analyze(text)
	assert.Equal(t, want, got)
}

func TestCatalog_ConcurrentReadsDuringReload(t *testing.T) {
	catalog := NewCatalog(&stubSource{foods: testFoods()}, domain.DefaultLexicon(), MatchConfig{})
	_, err := catalog.Reload(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				engine, err := catalog.Current()
				if !assert.NoError(t, err) {
					return
				}
				records, _ := engine.Analyze("1 cup rice, dal")
				assert.Len(t, records, 2)
			}
		}()
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := catalog.Reload(context.Background())
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	current, err := catalog.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), current.Generation())
}
