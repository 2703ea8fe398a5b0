package report

import (
	"math"

	"fitreport/internal/series"
	"fitreport/internal/stats"

	"github.com/dustin/go-humanize"
)

// The prompt-input dictionary doubles as the fallback data for placeholder
// substitution, so its keys match the schema placeholders.

func activityInputs(w series.TimeWindow, daily series.DailySeries, st stats.SummaryStats, heartRate []series.HeartRateDailySummary) map[string]any {
	level := stats.ActivityLevel(st)
	inputs := commonInputs(w, st)
	inputs["total_steps"] = int64(st.Total)
	inputs["avg_steps"] = st.Average
	inputs["max_steps"] = int64(st.Max)
	inputs["min_steps"] = int64(st.Min)
	inputs["total_steps_display"] = humanize.Comma(int64(st.Total))
	inputs["peak_day"] = stats.PeakDay(daily)
	inputs["assessment"] = level
	inputs["activity_level"] = level
	inputs["daily_steps"] = daily

	if len(heartRate) > 0 {
		hr := series.HeartRateAverages(heartRate)
		hrStats := stats.Summarize(hr)
		inputs["heart_rate_daily"] = heartRate
		inputs["avg_heart_rate"] = hrStats.Average
	}
	return inputs
}

func sleepInputs(w series.TimeWindow, daily series.DailySeries, st stats.SummaryStats) map[string]any {
	quality := stats.SleepQuality(st)
	inputs := commonInputs(w, st)
	inputs["total_sleep_minutes"] = int64(st.Total)
	inputs["avg_sleep_minutes"] = st.Average
	inputs["max_sleep_minutes"] = int64(st.Max)
	inputs["min_sleep_minutes"] = int64(st.Min)
	inputs["avg_sleep_hours"] = math.Round(st.Average/60*10) / 10
	inputs["sleep_quality"] = quality
	inputs["assessment"] = quality
	inputs["daily_sleep_minutes"] = daily
	return inputs
}

func commonInputs(w series.TimeWindow, st stats.SummaryStats) map[string]any {
	days := w.Days()
	return map[string]any{
		"start_date":     w.Start.Format(series.DateLayout),
		"end_date":       w.End.Format(series.DateLayout),
		"total_days":     days,
		"days_with_data": st.DaysWithData,
		"completeness":   stats.Completeness(st, days),
	}
}
