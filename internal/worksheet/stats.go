package worksheet

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	durationUs int64
}

// StatsSnapshot is a point-in-time aggregate of recent renders. Durations
// are microseconds; renders are far too fast for millisecond buckets.
type StatsSnapshot struct {
	Count       int     `json:"count"`
	MinUs       int64   `json:"min_us"`
	MaxUs       int64   `json:"max_us"`
	AvgUs       float64 `json:"avg_us"`
	P50Us       float64 `json:"p50_us"`
	P95Us       float64 `json:"p95_us"`
	P99Us       float64 `json:"p99_us"`
	Renders     int64   `json:"renders_total"`
	ParseErrors int64   `json:"parse_errors_total"`
	Warnings    int64   `json:"warnings_total"`
}

// RenderStats tracks render latencies within a rolling window, plus
// lifetime counters for renders and diagnostics.
type RenderStats struct {
	mu          sync.Mutex
	samples     []sample
	maxAge      time.Duration
	renders     int64
	parseErrors int64
	warnings    int64
}

func NewRenderStats(maxAge time.Duration) *RenderStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &RenderStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *RenderStats) Record(d time.Duration, parseErrors, warnings int) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, durationUs: us})
	s.renders++
	s.parseErrors += int64(parseErrors)
	s.warnings += int64(warnings)
}

func (s *RenderStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{
		Renders:     s.renders,
		ParseErrors: s.parseErrors,
		Warnings:    s.warnings,
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationUs)
		sum += sm.durationUs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinUs = values[0]
	snap.MaxUs = values[len(values)-1]
	snap.AvgUs = float64(sum) / float64(len(values))
	snap.P50Us = percentile(values, 50)
	snap.P95Us = percentile(values, 95)
	snap.P99Us = percentile(values, 99)
	return snap
}

func (s *RenderStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
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
