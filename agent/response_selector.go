package agent

import (
	"math/rand/v2"
	"sync"
	"time"
)

// ResponseSelector picks a reply uniformly from a unit's replies, skipping
// any that appear among the session's recent assistant replies.
type ResponseSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponseSelector uses src for randomness; nil seeds from the clock.
func NewResponseSelector(src rand.Source) *ResponseSelector {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &ResponseSelector{rng: rand.New(src)}
}

// Select returns a reply not in recent when one exists, otherwise any
// reply. replies must be non-empty.
func (r *ResponseSelector) Select(replies []string, recent []string) string {
	seen := make(map[string]struct{}, len(recent))
	for _, reply := range recent {
		seen[reply] = struct{}{}
	}
	fresh := make([]string, 0, len(replies))
	for _, reply := range replies {
		if _, ok := seen[reply]; !ok {
			fresh = append(fresh, reply)
		}
	}
	if len(fresh) == 0 {
		fresh = replies
	}

	r.mu.Lock()
	i := r.rng.IntN(len(fresh))
	r.mu.Unlock()
	return fresh[i]
}
