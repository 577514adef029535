package util

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	ulidLock    sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// ULID returns monotonically increasing ULID; t is the time part.
func ULID(t time.Time) ulid.ULID {
	ulidLock.Lock()
	defer ulidLock.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy)
}
