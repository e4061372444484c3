package history

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarizes the elapsed times of a set of records.
type Stats struct {
	Count  int
	Errors int
	Min    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Max    time.Duration
}

// Summarize computes latency percentiles over records.
func Summarize(records []Record) Stats {
	stats := Stats{Count: len(records)}
	if len(records) == 0 {
		return stats
	}

	// 1ms to 1h, 3 significant figures. Percentiles of longer sends
	// saturate at 1h; min, mean and max stay exact.
	h := hdrhistogram.New(1, maxTrackedMs, 3)
	minMs, maxMs, sumMs := records[0].ElapsedMs, records[0].ElapsedMs, int64(0)
	for _, r := range records {
		if r.IsError() {
			stats.Errors++
		}
		minMs = min(minMs, r.ElapsedMs)
		maxMs = max(maxMs, r.ElapsedMs)
		sumMs += r.ElapsedMs
		// clamped values are always in range
		_ = h.RecordValue(clampMs(r.ElapsedMs))
	}

	stats.Min = time.Duration(minMs) * time.Millisecond
	stats.Mean = time.Duration(sumMs/int64(len(records))) * time.Millisecond
	stats.P50 = time.Duration(h.ValueAtQuantile(50)) * time.Millisecond
	stats.P95 = time.Duration(h.ValueAtQuantile(95)) * time.Millisecond
	stats.P99 = time.Duration(h.ValueAtQuantile(99)) * time.Millisecond
	stats.Max = time.Duration(maxMs) * time.Millisecond
	return stats
}

const maxTrackedMs = 3_600_000

func clampMs(ms int64) int64 {
	return min(max(ms, 0), maxTrackedMs)
}

// ErrorRate returns the fraction of records that are errors.
func (s Stats) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Count)
}
