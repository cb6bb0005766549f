package llm

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, ms == 500)
	}

	snap := stats.Snapshot()
	if snap.Calls != 5 {
		t.Fatalf("expected calls=5, got %d", snap.Calls)
	}
	if snap.Errors != 1 {
		t.Fatalf("expected errors=1, got %d", snap.Errors)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100*time.Millisecond, false)
	now = now.Add(2 * time.Minute)

	if snap := stats.Snapshot(); snap.Calls != 0 {
		t.Fatalf("expected calls=0 after prune, got %d", snap.Calls)
	}

	stats.Record(200*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.Calls != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.Calls != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestStatsEmpty(t *testing.T) {
	if snap := NewStats(0).Snapshot(); snap != (StatsSnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
