// Package stats reduces daily series to the aggregate figures used by the
// numeric report and by the text-generation prompt.
package stats

import (
	"math"

	"fitreport/internal/series"
)

// SummaryStats is recomputed for every request and never stored.
type SummaryStats struct {
	Total        float64 `json:"total"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	DaysWithData int     `json:"days_with_data"`
}

// Summarize computes the exact total over all days. Average, Min, Max and
// DaysWithData only consider strictly positive days, so a zero day is read as
// "no data". An all-zero series yields the zero value.
func Summarize(s series.DailySeries) SummaryStats {
	var out SummaryStats
	var positiveSum float64
	for _, p := range s {
		out.Total += p.Value
		if p.Value <= 0 {
			continue
		}
		if out.DaysWithData == 0 {
			out.Min, out.Max = p.Value, p.Value
		}
		out.Min = math.Min(out.Min, p.Value)
		out.Max = math.Max(out.Max, p.Value)
		positiveSum += p.Value
		out.DaysWithData++
	}
	if out.DaysWithData > 0 {
		out.Average = math.Round(positiveSum/float64(out.DaysWithData)*10) / 10
	}
	return out
}

// PeakDay returns the date with the highest value, or "" when every day is
// zero. Ties resolve to the earliest date.
func PeakDay(s series.DailySeries) string {
	var peak string
	var best float64
	for _, p := range s {
		if p.Value > best {
			best = p.Value
			peak = p.Date
		}
	}
	return peak
}
