package llm

import (
	"context"
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

// StatsSnapshot aggregates the model calls seen within the window.
type StatsSnapshot struct {
	Calls  int     `json:"calls"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
}

// Stats keeps a rolling window of model call latencies.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

func (s *Stats) Record(d time.Duration, failed bool) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, duration: d, failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	ms := make([]int64, 0, len(s.samples))
	var sum int64
	errs := 0
	for _, sm := range s.samples {
		v := sm.duration.Milliseconds()
		ms = append(ms, v)
		sum += v
		if sm.failed {
			errs++
		}
	}
	slices.Sort(ms)

	return StatsSnapshot{
		Calls:  len(ms),
		Errors: errs,
		MinMs:  ms[0],
		MaxMs:  ms[len(ms)-1],
		AvgMs:  float64(sum) / float64(len(ms)),
		P50Ms:  percentile(ms, 50),
		P95Ms:  percentile(ms, 95),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	keep := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			keep = append(keep, sm)
		}
	}
	s.samples = keep
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	w := idx - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*w
}

// Timed records the latency of every call made through it.
type Timed struct {
	model ChatModel
	stats *Stats
}

func WithStats(model ChatModel, stats *Stats) *Timed {
	return &Timed{model: model, stats: stats}
}

func (t *Timed) Chat(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	start := time.Now()
	reply, err := t.model.Chat(ctx, messages, tools)
	t.stats.Record(time.Since(start), err != nil)
	return reply, err
}
