package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/macrolens/nutrilog/internal/domain"
)

// Engine bundles the index, matcher and extractor built from one reference table.
// It is never mutated after construction and is safe for concurrent use.
type Engine struct {
	index      *SearchIndex
	matcher    *MatchingService
	extractor  *Extractor
	generation uint64
	loadedAt   time.Time
}

// NewEngine builds an engine over foods
func NewEngine(foods []domain.ReferenceFood, lex domain.Lexicon, config MatchConfig) *Engine {
	idx := BuildIndex(foods)
	matcher := NewMatchingService(idx, NewQueryPreprocessor(lex, config.EnableDebugLogging), config)

	return &Engine{
		index:     idx,
		matcher:   matcher,
		extractor: NewExtractor(matcher, lex, config.EnableDebugLogging),
		loadedAt:  time.Now(),
	}
}

// Analyze extracts food mentions from text and prices them.
// Unresolved fragments from extraction come before any from aggregation.
func (e *Engine) Analyze(text string) ([]domain.NutrientRecord, []domain.UnresolvedFragment) {
	mentions, unresolved := e.extractor.Extract(text)
	records, missing := Aggregate(mentions, e.index)
	return records, append(unresolved, missing...)
}

// Extract returns the food mentions and unresolved segments in text
func (e *Engine) Extract(text string) ([]domain.FoodMention, []domain.UnresolvedFragment) {
	return e.extractor.Extract(text)
}

// Resolve resolves a single fragment
func (e *Engine) Resolve(fragment string) (domain.MatchResult, bool) {
	return e.matcher.Resolve(fragment)
}

// Index returns the engine's search index
func (e *Engine) Index() *SearchIndex {
	return e.index
}

// Generation is the catalog reload counter at the time this engine was installed
func (e *Engine) Generation() uint64 {
	return e.generation
}

// LoadedAt returns when the engine was built
func (e *Engine) LoadedAt() time.Time {
	return e.loadedAt
}

// Catalog owns the current engine and replaces it wholesale on reload
type Catalog struct {
	source     domain.ReferenceSource
	lexicon    domain.Lexicon
	config     MatchConfig
	current    atomic.Pointer[Engine]
	generation atomic.Uint64
	reloadMu   sync.Mutex
}

// NewCatalog creates an empty catalog; call Reload before use
func NewCatalog(source domain.ReferenceSource, lex domain.Lexicon, config MatchConfig) *Catalog {
	return &Catalog{
		source:  source,
		lexicon: lex,
		config:  config,
	}
}

// Reload loads the reference table, builds a new engine and swaps it in.
// On failure the previous engine stays in place.
func (c *Catalog) Reload(ctx context.Context) (*Engine, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	foods, err := c.source.Load(ctx)
	if err != nil {
		log.Printf("[CATALOG] Reload from %s failed: %v", c.source.Describe(), err)
		return nil, fmt.Errorf("load %s: %w", c.source.Describe(), err)
	}

	engine := NewEngine(foods, c.lexicon, c.config)
	engine.generation = c.generation.Add(1)
	c.current.Store(engine)

	log.Printf("[CATALOG] Generation %d: %d foods from %s", engine.generation, engine.index.Len(), c.source.Describe())
	return engine, nil
}

// Current returns the installed engine
func (c *Catalog) Current() (*Engine, error) {
	engine := c.current.Load()
	if engine == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return engine, nil
}
