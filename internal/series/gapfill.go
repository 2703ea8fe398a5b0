package series

// Fill returns exactly one point per date of the window, in order, using
// defaultValue for dates the input lacks. Input order does not matter and
// points outside the window are dropped. Filling a complete series returns an
// equal series.
func Fill(s DailySeries, window TimeWindow, defaultValue float64) DailySeries {
	lookup := make(map[string]float64, len(s))
	for _, p := range s {
		lookup[p.Date] = p.Value
	}

	dates := window.Dates()
	out := make(DailySeries, len(dates))
	for i, d := range dates {
		v, ok := lookup[d]
		if !ok {
			v = defaultValue
		}
		out[i] = DailyPoint{Date: d, Value: v}
	}
	return out
}

// FillHeartRate applies the same completeness rule to heart-rate summaries.
// Missing dates get all-zero facets.
func FillHeartRate(s []HeartRateDailySummary, window TimeWindow) []HeartRateDailySummary {
	lookup := make(map[string]HeartRateDailySummary, len(s))
	for _, hr := range s {
		lookup[hr.Date] = hr
	}

	dates := window.Dates()
	out := make([]HeartRateDailySummary, len(dates))
	for i, d := range dates {
		hr, ok := lookup[d]
		if !ok {
			hr = HeartRateDailySummary{Date: d}
		}
		out[i] = hr
	}
	return out
}

// HeartRateAverages projects the daily average facet into a plain series.
func HeartRateAverages(s []HeartRateDailySummary) DailySeries {
	out := make(DailySeries, len(s))
	for i, hr := range s {
		out[i] = DailyPoint{Date: hr.Date, Value: hr.Average}
	}
	return out
}
