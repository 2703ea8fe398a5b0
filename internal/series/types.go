package series

// RawSample is one point value as returned by a metric source.
type RawSample struct {
	TimestampMillis int64   `json:"timestamp_millis"`
	Value           float64 `json:"value"`
	// Min and Max are set when the source already summarized a range of
	// readings into this sample. Zero means Value is a single reading.
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// RawInterval is a session-shaped record such as a sleep segment.
type RawInterval struct {
	StartMillis int64  `json:"start_millis"`
	EndMillis   int64  `json:"end_millis"`
	Label       string `json:"label,omitempty"`
}

// Valid reports whether the interval has a positive duration.
func (iv RawInterval) Valid() bool {
	return iv.StartMillis < iv.EndMillis
}

// DailyPoint is one day of a normalized series.
type DailyPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DailySeries is ordered by date, with unique dates.
type DailySeries []DailyPoint

// Values returns the values in series order.
func (s DailySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// HeartRateDailySummary carries the four heart-rate facets of one day.
type HeartRateDailySummary struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	// Count is the number of readings behind the day. A sample the source
	// already summarized counts as one.
	Count int `json:"count"`
}

// Reduction is how the samples of one day collapse into a single value.
type Reduction string

const (
	ReductionSum     Reduction = "sum"
	ReductionAverage Reduction = "average"
)
