package extraction

import (
	"sort"
	"strings"
	"time"

	"fitreport/internal/series"
)

// MetricShape tells whether a metric is recorded as point values or as
// sessions with a duration.
type MetricShape int

const (
	ShapePoint MetricShape = iota
	ShapeInterval
)

func (s MetricShape) String() string {
	if s == ShapeInterval {
		return "interval"
	}
	return "point"
}

// MetricKind describes one metric and how it is queried and reduced.
type MetricKind struct {
	Name string
	// DataType is the source's data type name used by the bulk query.
	DataType string
	// SourceMatch is matched case-insensitively against the declared data
	// type of enumerated sources.
	SourceMatch string
	Shape       MetricShape
	Reduction   series.Reduction
	// BucketDuration is the pre-aggregation slice requested from the source.
	BucketDuration time.Duration
	// SessionActivityType selects sessions for interval metrics.
	SessionActivityType int64
	// ExcludedStages drops interval points whose integer value is listed,
	// e.g. awake segments inside a sleep session.
	ExcludedStages []int64
	// Unit labels the value in reports.
	Unit string
	// SummaryFacets marks bulk buckets whose points carry [average, max, min].
	SummaryFacets bool
}

// BucketMillis is BucketDuration in milliseconds.
func (k MetricKind) BucketMillis() int64 {
	return k.BucketDuration.Milliseconds()
}

// MatchesSource reports whether a declared data type belongs to this metric.
func (k MetricKind) MatchesSource(declared string) bool {
	if k.SourceMatch == "" {
		return false
	}
	return strings.Contains(strings.ToLower(declared), strings.ToLower(k.SourceMatch))
}

func (k MetricKind) excludes(stage int64) bool {
	for _, s := range k.ExcludedStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Sleep stage values of the sleep segment data type.
const (
	StageAwake    int64 = 1
	StageSleep    int64 = 2
	StageOutOfBed int64 = 3
	StageLight    int64 = 4
	StageDeep     int64 = 5
	StageREM      int64 = 6
)

var stageNames = map[int64]string{
	StageAwake:    "awake",
	StageSleep:    "sleep",
	StageOutOfBed: "out_of_bed",
	StageLight:    "light",
	StageDeep:     "deep",
	StageREM:      "rem",
}

// StageName returns the label for a sleep stage value.
func StageName(stage int64) string {
	if name, ok := stageNames[stage]; ok {
		return name
	}
	return "unknown"
}

const (
	oneDay       = 24 * time.Hour
	sleepSession = 72
)

var (
	Steps = MetricKind{
		Name:           "steps",
		DataType:       "com.google.step_count.delta",
		SourceMatch:    "step_count",
		Shape:          ShapePoint,
		Reduction:      series.ReductionSum,
		BucketDuration: oneDay,
		Unit:           "steps",
	}
	Calories = MetricKind{
		Name:           "calories",
		DataType:       "com.google.calories.expended",
		SourceMatch:    "calories",
		Shape:          ShapePoint,
		Reduction:      series.ReductionSum,
		BucketDuration: oneDay,
		Unit:           "kcal",
	}
	Distance = MetricKind{
		Name:           "distance",
		DataType:       "com.google.distance.delta",
		SourceMatch:    "distance",
		Shape:          ShapePoint,
		Reduction:      series.ReductionSum,
		BucketDuration: oneDay,
		Unit:           "m",
	}
	ActiveMinutes = MetricKind{
		Name:           "active-minutes",
		DataType:       "com.google.active_minutes",
		SourceMatch:    "active_minutes",
		Shape:          ShapePoint,
		Reduction:      series.ReductionSum,
		BucketDuration: oneDay,
		Unit:           "min",
	}
	HeartRate = MetricKind{
		Name:           "heart-rate",
		DataType:       "com.google.heart_rate.bpm",
		SourceMatch:    "heart_rate",
		Shape:          ShapePoint,
		Reduction:      series.ReductionAverage,
		BucketDuration: 30 * time.Minute,
		Unit:           "bpm",
		SummaryFacets:  true,
	}
	Sleep = MetricKind{
		Name:                "sleep",
		DataType:            "com.google.sleep.segment",
		SourceMatch:         "sleep",
		Shape:               ShapeInterval,
		Reduction:           series.ReductionSum,
		BucketDuration:      oneDay,
		SessionActivityType: sleepSession,
		ExcludedStages:      []int64{StageAwake, StageOutOfBed},
		Unit:                "min",
	}
)

var metrics = map[string]MetricKind{
	Steps.Name:         Steps,
	Calories.Name:      Calories,
	Distance.Name:      Distance,
	ActiveMinutes.Name: ActiveMinutes,
	HeartRate.Name:     HeartRate,
	Sleep.Name:         Sleep,
}

// LookupMetric finds a built-in metric by name.
func LookupMetric(name string) (MetricKind, bool) {
	k, ok := metrics[strings.ToLower(name)]
	return k, ok
}

// MetricNames lists the built-in metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(metrics))
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
