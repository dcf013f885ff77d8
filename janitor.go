package tickcache

import (
	"time"

	"go.uber.org/zap"
)

// advancer is the background periodic driver of the timer wheel
// (spec.md §6's active/passive split, passive mode), generalized from
// the teacher's startJanitor/Stop (janitor.go): a ticker plus a stop
// channel, except each tick now calls wheel.AdvanceToTick under the
// coordinator's lock instead of scanning the whole LRU list for
// expired items.
type advancer struct {
	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
}

// startAdvancer launches the background tick driver for c. It is only
// called from New when passive expiration is enabled.
func startAdvancer[K comparable, V any](c *Cache[K, V]) *advancer {
	a := &advancer{
		ticker: time.NewTicker(time.Duration(c.tickMillis) * time.Millisecond),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(a.done)
		for {
			select {
			case <-a.ticker.C:
				c.mu.Lock()
				if c.closed {
					c.mu.Unlock()
					continue
				}
				caughtUp := c.wheel.AdvanceToTick(c.nowTick(), c.onExpireLocked)
				if !caughtUp {
					pending, _ := c.wheel.PendingTargetTick()
					c.logger.Debug("advance budget exhausted, resuming next tick",
						zap.Uint64("pending_target_tick", pending))
				}
				c.mu.Unlock()
			case <-a.stop:
				a.ticker.Stop()
				return
			}
		}
	}()

	return a
}

// Stop signals the advancer goroutine to exit and waits for it to do
// so. Safe to call at most once; Cache.Close guards against a second
// call.
func (a *advancer) Stop() {
	close(a.stop)
	<-a.done
}
