package stats

// Assessment labels are computed locally and substituted into the report
// even when the text service echoes its template.
const (
	InsufficientData = "insufficient data"

	Sedentary        = "sedentary"
	LightlyActive    = "lightly active"
	ModeratelyActive = "moderately active"
	Active           = "active"

	SleepPoor = "poor"
	SleepFair = "fair"
	SleepGood = "good"
	SleepLong = "long"
)

// ActivityLevel thresholds the average daily step count of days with data.
func ActivityLevel(steps SummaryStats) string {
	switch avg := steps.Average; {
	case steps.DaysWithData == 0:
		return InsufficientData
	case avg < 5000:
		return Sedentary
	case avg < 7500:
		return LightlyActive
	case avg < 10000:
		return ModeratelyActive
	default:
		return Active
	}
}

// SleepQuality thresholds the average minutes asleep per night with data.
// Seven to nine hours counts as good.
func SleepQuality(sleep SummaryStats) string {
	switch avg := sleep.Average; {
	case sleep.DaysWithData == 0:
		return InsufficientData
	case avg < 360:
		return SleepPoor
	case avg < 420:
		return SleepFair
	case avg <= 540:
		return SleepGood
	default:
		return SleepLong
	}
}

// Completeness is the share of days with data, as a percentage with one decimal.
func Completeness(s SummaryStats, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	pct := float64(s.DaysWithData) / float64(totalDays) * 100
	return float64(int(pct*10+0.5)) / 10
}
