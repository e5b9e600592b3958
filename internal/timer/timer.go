// Package timer provides a coarse clock for I/O deadlines, so that the accept loop
// and every connection don't need to call time.Now().
package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is how often the clock is updated. Deadlines are computed in whole
// periods anyway, so half a second of lag doesn't matter.
const Resolution = 500 * time.Millisecond

var (
	millis = new(atomic.Int64)
	start  sync.Once
)

// Now returns the current time, lagging behind at most by Resolution. The clock
// starts ticking on the first call.
func Now() time.Time {
	start.Do(func() {
		millis.Store(time.Now().UnixMilli())
		go tick()
	})

	ms := millis.Load()
	return time.UnixMilli(ms)
}

// Deadline returns the time after timeout from now.
func Deadline(timeout time.Duration) time.Time {
	return Now().Add(timeout)
}

func tick() {
	ticker := time.NewTicker(Resolution)
	defer ticker.Stop()

	for now := range ticker.C {
		millis.Store(now.UnixMilli())
	}
}
