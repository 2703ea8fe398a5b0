package series

import (
	"math"
	"sort"
	"time"
)

// AggregatePoints buckets samples by UTC date and reduces each bucket. Only
// dates with at least one sample inside the window are returned; filling the
// gaps is Fill's job.
func AggregatePoints(samples []RawSample, window TimeWindow, reduction Reduction) DailySeries {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range samples {
		if !window.Contains(s.TimestampMillis) {
			continue
		}
		d := DateOf(s.TimestampMillis)
		sums[d] += s.Value
		counts[d]++
	}

	out := make(DailySeries, 0, len(sums))
	for _, d := range sortedKeys(counts) {
		v := sums[d]
		if reduction == ReductionAverage {
			v = round1(v / float64(counts[d]))
		}
		out = append(out, DailyPoint{Date: d, Value: v})
	}
	return out
}

// AggregateIntervals apportions interval durations across the UTC dates they
// touch, in whole minutes. An interval crossing midnight is split there and
// each part is floor-divided into minutes on its own date.
func AggregateIntervals(intervals []RawInterval, window TimeWindow) DailySeries {
	minutes := make(map[string]int64)
	for _, iv := range intervals {
		if !iv.Valid() {
			continue
		}
		for date, m := range splitAtMidnight(iv) {
			minutes[date] += m
		}
	}

	out := make(DailySeries, 0, len(minutes))
	for _, d := range sortedKeys(minutes) {
		if !window.containsDate(d) {
			continue
		}
		out = append(out, DailyPoint{Date: d, Value: float64(minutes[d])})
	}
	return out
}

// splitAtMidnight walks [start, end) one UTC day at a time.
func splitAtMidnight(iv RawInterval) map[string]int64 {
	parts := make(map[string]int64)
	cur := iv.StartMillis
	for cur < iv.EndMillis {
		day := time.UnixMilli(cur).UTC()
		next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, time.UTC).UnixMilli()
		clip := min(iv.EndMillis, next)
		parts[day.Format(DateLayout)] += (clip - cur) / millisPerMinute
		cur = clip
	}
	return parts
}

// AggregateHeartRate summarizes bpm samples per UTC date. A summarized
// sample contributes its own Min and Max and counts as one reading.
func AggregateHeartRate(samples []RawSample, window TimeWindow) []HeartRateDailySummary {
	byDate := make(map[string]*HeartRateDailySummary)
	sums := make(map[string]float64)
	for _, s := range samples {
		if !window.Contains(s.TimestampMillis) || s.Value <= 0 {
			continue
		}
		lo, hi := s.Value, s.Value
		if s.Min > 0 {
			lo = s.Min
		}
		if s.Max > 0 {
			hi = s.Max
		}
		d := DateOf(s.TimestampMillis)
		hr, ok := byDate[d]
		if !ok {
			hr = &HeartRateDailySummary{Date: d, Min: lo, Max: hi}
			byDate[d] = hr
		}
		hr.Min = math.Min(hr.Min, lo)
		hr.Max = math.Max(hr.Max, hi)
		hr.Count++
		sums[d] += s.Value
	}

	out := make([]HeartRateDailySummary, 0, len(byDate))
	for _, d := range sortedKeys(byDate) {
		hr := byDate[d]
		hr.Average = round1(sums[d] / float64(hr.Count))
		out = append(out, *hr)
	}
	return out
}

func (w TimeWindow) containsDate(date string) bool {
	return date >= w.Start.Format(DateLayout) && date <= w.End.Format(DateLayout)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
