package extraction

import "fitreport/internal/series"

const nanosPerMilli = int64(1_000_000)

// valueAccessor reads one representation of a value and reports whether it
// was populated.
type valueAccessor func(Value) (float64, bool)

// valueAccessors are tried in order; the first populated field wins.
var valueAccessors = []valueAccessor{
	func(v Value) (float64, bool) {
		if v.IntVal == nil {
			return 0, false
		}
		return float64(*v.IntVal), true
	},
	func(v Value) (float64, bool) {
		if v.FpVal == nil {
			return 0, false
		}
		return *v.FpVal, true
	},
	func(v Value) (float64, bool) {
		for _, e := range v.MapVal {
			if e.FpVal != nil {
				return *e.FpVal, true
			}
		}
		return 0, false
	},
}

func readValue(v Value) (float64, bool) {
	for _, read := range valueAccessors {
		if f, ok := read(v); ok {
			return f, true
		}
	}
	return 0, false
}

// pointValue reads the first value of a point, defaulting to zero.
func pointValue(p Point) float64 {
	if len(p.Values) == 0 {
		return 0
	}
	v, _ := readValue(p.Values[0])
	return v
}

// pointRange reads the max and min facets of a summary point laid out as
// [average, max, min].
func pointRange(p Point) (lo, hi float64, ok bool) {
	if len(p.Values) < 3 {
		return 0, 0, false
	}
	hi, okHi := readValue(p.Values[1])
	lo, okLo := readValue(p.Values[2])
	if !okHi || !okLo || lo <= 0 || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

type timestampAccessor func(Point) (int64, bool)

var startAccessors = []timestampAccessor{
	func(p Point) (int64, bool) { return p.StartTimeMillis, p.StartTimeMillis > 0 },
	func(p Point) (int64, bool) { return p.StartTimeNanos / nanosPerMilli, p.StartTimeNanos > 0 },
}

var endAccessors = []timestampAccessor{
	func(p Point) (int64, bool) { return p.EndTimeMillis, p.EndTimeMillis > 0 },
	func(p Point) (int64, bool) { return p.EndTimeNanos / nanosPerMilli, p.EndTimeNanos > 0 },
}

func firstTimestamp(p Point, accessors []timestampAccessor) (int64, bool) {
	for _, read := range accessors {
		if ts, ok := read(p); ok {
			return ts, true
		}
	}
	return 0, false
}

// pointSamples converts raw points into samples, dropping points without a
// usable timestamp.
func pointSamples(points []Point) []series.RawSample {
	out := make([]series.RawSample, 0, len(points))
	for _, p := range points {
		ts, ok := firstTimestamp(p, startAccessors)
		if !ok {
			continue
		}
		out = append(out, series.RawSample{TimestampMillis: ts, Value: pointValue(p)})
	}
	return out
}

// pointIntervals converts raw segment points into intervals, dropping
// excluded stages and points without a positive duration.
func pointIntervals(kind MetricKind, points []Point) []series.RawInterval {
	out := make([]series.RawInterval, 0, len(points))
	for _, p := range points {
		start, okStart := firstTimestamp(p, startAccessors)
		end, okEnd := firstTimestamp(p, endAccessors)
		if !okStart || !okEnd {
			continue
		}
		stage := int64(pointValue(p))
		if kind.excludes(stage) {
			continue
		}
		iv := series.RawInterval{StartMillis: start, EndMillis: end, Label: StageName(stage)}
		if iv.Valid() {
			out = append(out, iv)
		}
	}
	return out
}

// bucketSample collapses one pre-aggregated bucket into a sample stamped
// with the bucket start. Empty buckets yield no sample. For summary kinds the
// sample also carries the bucket's min and max facets.
func bucketSample(kind MetricKind, b Bucket) (series.RawSample, bool) {
	if len(b.Points) == 0 {
		return series.RawSample{}, false
	}
	ts := b.StartTimeMillis
	if ts <= 0 {
		var ok bool
		if ts, ok = firstTimestamp(b.Points[0], startAccessors); !ok {
			return series.RawSample{}, false
		}
	}

	sample := series.RawSample{TimestampMillis: ts}
	for _, p := range b.Points {
		sample.Value += pointValue(p)
		if !kind.SummaryFacets {
			continue
		}
		if lo, hi, ok := pointRange(p); ok {
			if sample.Min == 0 || lo < sample.Min {
				sample.Min = lo
			}
			if hi > sample.Max {
				sample.Max = hi
			}
		}
	}
	if kind.Reduction == series.ReductionAverage {
		sample.Value /= float64(len(b.Points))
	}
	return sample, true
}
