package cache

import (
	"context"
	"time"
)

// janitor evicts expired entries on a fixed interval until Close.
func (e *Engine) janitor(interval time.Duration) {
	defer e.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.EvictExpired(context.Background(), e.ttl)
		}
	}
}
