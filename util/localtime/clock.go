package localtime

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Operations sample it once.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is tuned by the global TimeSyncer when set.
var SystemClock Clock = ClockFunc(Now)

// MonotonicClock never goes backward; an earlier reading of the underlying
// clock returns the latest instant seen so far.
type MonotonicClock struct {
	sync.Mutex
	clock  Clock
	latest time.Time
}

func NewMonotonicClock(clock Clock) *MonotonicClock {
	return &MonotonicClock{clock: clock}
}

func (mc *MonotonicClock) Now() time.Time {
	mc.Lock()
	defer mc.Unlock()

	if n := mc.clock.Now(); n.After(mc.latest) {
		mc.latest = n
	}

	return mc.latest
}

// ManualClock only moves when told.
type ManualClock struct {
	sync.RWMutex
	t time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (mc *ManualClock) Now() time.Time {
	mc.RLock()
	defer mc.RUnlock()

	return mc.t
}

func (mc *ManualClock) Set(t time.Time) {
	mc.Lock()
	defer mc.Unlock()

	mc.t = t
}

func (mc *ManualClock) Add(d time.Duration) time.Time {
	mc.Lock()
	defer mc.Unlock()

	mc.t = mc.t.Add(d)

	return mc.t
}
