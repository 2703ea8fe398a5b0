package report

import (
	"fmt"
	"strings"
	"time"

	"fitreport/internal/articulation"
	"fitreport/internal/series"
	"fitreport/internal/stats"
)

// Kind selects which report is built.
type Kind string

const (
	KindActivity Kind = "activity"
	KindSleep    Kind = "sleep"
)

// ParseKind accepts "activity" (or "steps") and "sleep".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activity", "steps":
		return KindActivity, nil
	case "sleep":
		return KindSleep, nil
	}
	return "", fmt.Errorf("%w: unknown report kind %q (valid: activity, sleep)", ErrInvalidInput, s)
}

// Schema returns the report schema of the kind.
func (k Kind) Schema() articulation.Schema {
	if k == KindSleep {
		return articulation.SleepReportSchema
	}
	return articulation.ActivityReportSchema
}

// Window is the request window as it appears on the wire.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func windowOf(w series.TimeWindow) Window {
	return Window{Start: w.Start.Format(series.DateLayout), End: w.End.Format(series.DateLayout)}
}

// Report is the final product of one request.
type Report struct {
	RequestID    string                         `json:"request_id"`
	Kind         Kind                           `json:"kind"`
	Window       Window                         `json:"window"`
	Series       series.DailySeries             `json:"series"`
	HeartRate    []series.HeartRateDailySummary `json:"heart_rate,omitempty"`
	Stats        stats.SummaryStats             `json:"stats"`
	Assessment   string                         `json:"assessment"`
	Completeness float64                        `json:"completeness"`
	PeakDay      string                         `json:"peak_day,omitempty"`
	SourceTier   string                         `json:"source_tier,omitempty"`

	// Narrative is the recovered text-generation output.
	Narrative      map[string]any `json:"narrative"`
	RecoveryMethod string         `json:"recovery_method"`
	RecoverySteps  []string       `json:"recovery_steps,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DataPayload is the raw, gap-filled data of a window in the shape handed
// to text-generation tools.
type DataPayload struct {
	Window               Window             `json:"window"`
	PhysicalActivityData series.DailySeries `json:"physical_activity_data"`
	SleepData            series.DailySeries `json:"sleep_data"`
}

// DefaultDates returns the window of days dates ending on today's UTC date.
func DefaultDates(now time.Time, days int) (start, end string) {
	if days < 1 {
		days = 1
	}
	e := now.UTC()
	s := e.AddDate(0, 0, -(days - 1))
	return s.Format(series.DateLayout), e.Format(series.DateLayout)
}
