package importer

import (
	"sort"
	"sync"
	"time"
)

// ImportSample records one finished import.
type ImportSample struct {
	DurationMs int64
	Chunks     int
	Tokens     int
	Failed     bool
}

type timedSample struct {
	timestamp time.Time
	ImportSample
}

// StatsSnapshot is a point-in-time aggregate of recent imports.
type StatsSnapshot struct {
	Count       int     `json:"count"`
	Failed      int     `json:"failed"`
	TotalChunks int     `json:"total_chunks"`
	TotalTokens int     `json:"total_tokens"`
	MinMs       int64   `json:"min_ms"`
	MaxMs       int64   `json:"max_ms"`
	AvgMs       float64 `json:"avg_ms"`
	P50Ms       float64 `json:"p50_ms"`
	P95Ms       float64 `json:"p95_ms"`
}

// Stats tracks import outcomes within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []timedSample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]timedSample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(sample ImportSample) {
	if sample.DurationMs < 0 {
		sample.DurationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, timedSample{timestamp: now, ImportSample: sample})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	snap := StatsSnapshot{Count: len(s.samples)}
	for _, sm := range s.samples {
		values = append(values, sm.DurationMs)
		sum += sm.DurationMs
		snap.TotalChunks += sm.Chunks
		snap.TotalTokens += sm.Tokens
		if sm.Failed {
			snap.Failed++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
