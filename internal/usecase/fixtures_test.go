package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/macrolens/nutrilog/internal/domain"
)

// testFoods is a small reference table in load order
func testFoods() []domain.ReferenceFood {
	return []domain.ReferenceFood{
		{Name: "Rice", CaloriesPer100g: 200, ProteinG: 2.7, CarbsG: 28, FatG: 0.3},
		{Name: "Brown Rice", CaloriesPer100g: 112, ProteinG: 2.3, CarbsG: 24, FatG: 0.8},
		{Name: "Fried Rice", CaloriesPer100g: 163, ProteinG: 3.5, CarbsG: 30, FatG: 3.2},
		{Name: "Whole Wheat Bread", CaloriesPer100g: 247, ProteinG: 13, CarbsG: 41, FatG: 3.4},
		{Name: "Butter", CaloriesPer100g: 717, ProteinG: 0.9, CarbsG: 0.1, FatG: 81},
		{Name: "Scrambled Eggs", CaloriesPer100g: 149, ProteinG: 10, CarbsG: 1.6, FatG: 11},
		{Name: "Idli", CaloriesPer100g: 58, ProteinG: 2, CarbsG: 12, FatG: 0.4},
		{Name: "Coconut Chutney", CaloriesPer100g: 180, ProteinG: 2.5, CarbsG: 8, FatG: 16},
		{Name: "Dal", CaloriesPer100g: 116, ProteinG: 9, CarbsG: 20, FatG: 0.4},
		{Name: "Curd", CaloriesPer100g: 60, ProteinG: 3.1, CarbsG: 4.7, FatG: 3.3},
		{Name: "Chapati", CaloriesPer100g: 297, ProteinG: 11, CarbsG: 46, FatG: 7.5},
		{Name: "Mixed Vegetable Curry", CaloriesPer100g: 90, ProteinG: 2.5, CarbsG: 10, FatG: 4.5},
		{Name: "Banana", CaloriesPer100g: 89, ProteinG: 1.1, CarbsG: 23, FatG: 0.3},
	}
}

func newTestEngine() *Engine {
	return NewEngine(testFoods(), domain.DefaultLexicon(), MatchConfig{})
}

func newTestMatcher(foods []domain.ReferenceFood) *MatchingService {
	idx := BuildIndex(foods)
	return NewMatchingService(idx, NewQueryPreprocessor(domain.DefaultLexicon(), false), MatchConfig{})
}

// stubSource is an in-memory reference source
type stubSource struct {
	mu    sync.Mutex
	foods []domain.ReferenceFood
	err   error
	loads int
}

func (s *stubSource) Load(ctx context.Context) ([]domain.ReferenceFood, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.ReferenceFood, len(s.foods))
	copy(out, s.foods)
	return out, nil
}

func (s *stubSource) Describe() string {
	return "stub"
}

func (s *stubSource) set(foods []domain.ReferenceFood, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foods, s.err = foods, err
}

// mockCache is a minimal CacheRepository without expiry
type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	purges  int
	failSet bool
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return context.DeadlineExceeded
	}
	c.sets++
	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockCache) Purge(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purges++
	c.data = make(map[string][]byte)
	return nil
}
