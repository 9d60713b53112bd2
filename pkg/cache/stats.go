package cache

import (
	"fmt"
	"sync"

	"github.com/pario-ai/findcache/pkg/models"
)

// counters tracks usage since the last reset.
type counters struct {
	mu        sync.Mutex
	hits      int64
	misses    int64
	saves     int64
	cachedIDs map[models.Category][]string
}

func (c *counters) recordLookup(cat models.Category, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(ids) == 0 {
		c.misses++
		return
	}
	c.hits++
	if c.cachedIDs == nil {
		c.cachedIDs = make(map[models.Category][]string)
	}
	c.cachedIDs[cat] = append(c.cachedIDs[cat], ids...)
}

func (c *counters) recordSave() {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
}

func (c *counters) reset() {
	c.mu.Lock()
	c.hits, c.misses, c.saves = 0, 0, 0
	c.cachedIDs = nil
	c.mu.Unlock()
}

func (c *counters) snapshot() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := models.CacheStats{
		Hits:   c.hits,
		Misses: c.misses,
		Saves:  c.saves,
	}
	if len(c.cachedIDs) > 0 {
		s.CachedIDs = make(map[models.Category][]string, len(c.cachedIDs))
		for cat, ids := range c.cachedIDs {
			s.CachedIDs[cat] = append([]string(nil), ids...)
		}
	}
	return s
}

// Summarize fills in the derived HitRate and Summary fields.
func Summarize(s *models.CacheStats) {
	total := s.Requests()
	s.HitRate = 0
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	s.Summary = fmt.Sprintf(
		"requests: %d, hits: %d, misses: %d, saves: %d, hit rate: %.2f%%",
		total, s.Hits, s.Misses, s.Saves, s.HitRate*100,
	)
}
