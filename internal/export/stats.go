package export

import (
	"slices"
	"sync"
	"time"
)

type observation struct {
	at       time.Time
	duration time.Duration
	messages int
}

// StatsSnapshot aggregates the exports seen within the window.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Messages int     `json:"messages"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// Stats keeps export latencies over a rolling window. Safe for concurrent use.
type Stats struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, obs: make([]observation, 0, 128)}
}

// Record adds one export.
func (s *Stats) Record(d time.Duration, messages int) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.obs = append(s.obs, observation{at: now, duration: max(d, 0), messages: messages})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	if len(s.obs) == 0 {
		return StatsSnapshot{}
	}

	ms := make([]int64, len(s.obs))
	var sum int64
	snap := StatsSnapshot{Count: len(s.obs)}
	for i, o := range s.obs {
		ms[i] = o.duration.Milliseconds()
		sum += ms[i]
		snap.Messages += o.messages
	}
	slices.Sort(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expireLocked drops observations older than the window. Callers hold mu.
func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.obs = slices.DeleteFunc(s.obs, func(o observation) bool { return o.at.Before(cutoff) })
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
