package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/piwi3910/ProfileCut/internal/model"
	"golang.org/x/sync/singleflight"
)

// defaultCacheTTL is how long a memoized result stays valid.
const defaultCacheTTL = 60 * time.Second

// CachedOptimizer memoizes Optimize for identical inputs. The cache is a
// strict memoization of the deterministic pipeline: entries expire after
// the TTL, and concurrent calls with the same canonical key share one
// underlying run.
type CachedOptimizer struct {
	opt *Optimizer
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	result model.PlacementResult
	stored time.Time
}

func NewCachedOptimizer(settings model.Settings, ttl time.Duration) *CachedOptimizer {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedOptimizer{
		opt:     New(settings),
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Optimize returns the cached result when a fresh entry exists for the
// canonicalized inputs, otherwise runs the pipeline.
func (c *CachedOptimizer) Optimize(parts []model.Part, materials []model.Material) model.PlacementResult {
	key := cacheKey(parts, materials, c.opt.Settings)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Since(e.stored) < c.ttl {
		c.mu.Unlock()
		return e.result
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		result := c.opt.Optimize(parts, materials)
		c.mu.Lock()
		c.entries[key] = cacheEntry{result: result, stored: time.Now()}
		c.mu.Unlock()
		return result, nil
	})
	return v.(model.PlacementResult)
}

// cacheKey canonicalizes the inputs: part and material signatures are
// sorted so catalog order does not defeat the cache.
func cacheKey(parts []model.Part, materials []model.Material, settings model.Settings) string {
	sigs := make([]string, 0, len(parts)+len(materials))
	for _, p := range parts {
		sigs = append(sigs, fmt.Sprintf("p:%s:%d:%d:%d:%v", p.ID, p.Length, p.Thickness, p.Quantity, p.Angles))
	}
	for _, m := range materials {
		sigs = append(sigs, fmt.Sprintf("m:%s:%d:%d", m.ID, m.Length, m.Quantity))
	}
	sort.Strings(sigs)

	var b strings.Builder
	fmt.Fprintf(&b, "tol=%g;size=%d;len=%g;mixed=%v;c=%+v;", settings.AngleTolerance,
		settings.MaxChainSize, settings.MaxChainLength, settings.PrioritizeMixedChains, settings.Constraints)
	b.WriteString(strings.Join(sigs, "|"))
	return b.String()
}
