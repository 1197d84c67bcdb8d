package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idSource hands out message and conversation ids, and the timestamp
// namespaces used for team ids.
type idSource struct {
	mu        sync.Mutex
	entropy   *ulid.MonotonicEntropy
	lastBatch int64
}

func newIDSource(seed time.Time) *idSource {
	return &idSource{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed.UnixNano())), 0),
	}
}

// next returns prefix + "_" + a ULID stamped with t.
func (s *idSource) next(prefix string, t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return prefix + "_" + ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// batch returns the id namespace for a new team. Namespaces never overlap:
// two teams created within the same few milliseconds get disjoint ranges.
func (s *idSource) batch(t time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := t.UnixMilli()
	if s.lastBatch != 0 && ts < s.lastBatch+namespaceWidth {
		ts = s.lastBatch + namespaceWidth
	}
	s.lastBatch = ts
	return ts
}
