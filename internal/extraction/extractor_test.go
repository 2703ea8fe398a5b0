package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitreport/internal/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeSource is a scripted Source that records which calls were made.
type fakeSource struct {
	buckets    []Bucket
	bucketsErr error
	sessions   []Session
	sessionErr error
	sources    []SourceDescriptor
	sourcesErr error
	points     map[string][]Point
	pointsErr  map[string]error

	calls   []string
	queried []string
}

func (f *fakeSource) AggregateQuery(_ context.Context, dataType string, _, _, _ int64) ([]Bucket, error) {
	f.calls = append(f.calls, "aggregate:"+dataType)
	return f.buckets, f.bucketsErr
}

func (f *fakeSource) ListIntervals(_ context.Context, _ int64, _, _ int64) ([]Session, error) {
	f.calls = append(f.calls, "sessions")
	return f.sessions, f.sessionErr
}

func (f *fakeSource) ListSources(context.Context) ([]SourceDescriptor, error) {
	f.calls = append(f.calls, "sources")
	return f.sources, f.sourcesErr
}

func (f *fakeSource) QuerySource(_ context.Context, id string, _, _ int64) ([]Point, error) {
	f.queried = append(f.queried, id)
	if err := f.pointsErr[id]; err != nil {
		return nil, err
	}
	return f.points[id], nil
}

func window(t *testing.T) series.TimeWindow {
	t.Helper()
	w, err := series.ParseWindow("2025-07-01", "2025-07-03")
	require.NoError(t, err)
	return w
}

func millis(t *testing.T, ts string) int64 {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	return parsed.UnixMilli()
}

func TestExtractor_BulkAggregateFirst(t *testing.T) {
	src := &fakeSource{
		buckets: []Bucket{
			{StartTimeMillis: millis(t, "2025-07-01T00:00:00Z"), Points: []Point{
				{Values: []Value{{IntVal: Int64(3000)}}},
				{Values: []Value{{IntVal: Int64(1200)}}},
			}},
			{StartTimeMillis: millis(t, "2025-07-02T00:00:00Z")},
		},
	}

	res := NewExtractor(src, zap.NewNop()).Extract(context.Background(), Steps, window(t))

	assert.Equal(t, "bulk_aggregate", res.Tier)
	assert.Equal(t, []series.RawSample{
		{TimestampMillis: millis(t, "2025-07-01T00:00:00Z"), Value: 4200},
	}, res.Samples)
	assert.Equal(t, []string{"aggregate:com.google.step_count.delta"}, src.calls)
}

func TestExtractor_FallsBackToSourceEnumeration(t *testing.T) {
	src := &fakeSource{
		bucketsErr: errors.New("503 backend error"),
		sources: []SourceDescriptor{
			{ID: "raw:com.google.heart_rate.bpm:watch", DataType: "com.google.heart_rate.bpm"},
			{ID: "raw:com.google.step_count.delta:phone", DataType: "com.google.STEP_COUNT.delta"},
			{ID: "raw:com.google.step_count.delta:watch", DataType: "com.google.step_count.delta"},
		},
		points: map[string][]Point{
			"raw:com.google.step_count.delta:watch": {
				{StartTimeNanos: millis(t, "2025-07-02T10:00:00Z") * 1_000_000, Values: []Value{{IntVal: Int64(800)}}},
			},
		},
	}
	core, logs := observer.New(zap.WarnLevel)

	res := NewExtractor(src, zap.New(core)).Extract(context.Background(), Steps, window(t))

	require.False(t, res.Empty())
	assert.Equal(t, "source_enumeration", res.Tier)
	assert.Equal(t, []series.RawSample{
		{TimestampMillis: millis(t, "2025-07-02T10:00:00Z"), Value: 800},
	}, res.Samples)
	// The phone source matched case-insensitively, was empty, and the watch
	// source was tried next. The heart-rate source was never queried.
	assert.Equal(t, []string{
		"raw:com.google.step_count.delta:phone",
		"raw:com.google.step_count.delta:watch",
	}, src.queried)
	// The interval tier does not apply to steps and is skipped silently.
	assert.NotContains(t, src.calls, "sessions")
	require.Equal(t, 1, logs.FilterMessage("extraction tier failed").Len())
}

func TestExtractor_StopsAtFirstNonEmptySource(t *testing.T) {
	src := &fakeSource{
		sources: []SourceDescriptor{
			{ID: "a", DataType: "com.google.step_count.delta"},
			{ID: "b", DataType: "com.google.step_count.delta"},
		},
		points: map[string][]Point{
			"a": {{StartTimeMillis: millis(t, "2025-07-01T09:00:00Z"), Values: []Value{{IntVal: Int64(10)}}}},
			"b": {{StartTimeMillis: millis(t, "2025-07-01T09:00:00Z"), Values: []Value{{IntVal: Int64(99)}}}},
		},
	}

	res := NewExtractor(src, nil).Extract(context.Background(), Steps, window(t))

	assert.Equal(t, []string{"a"}, src.queried)
	assert.Equal(t, float64(10), res.Samples[0].Value)
}

func TestExtractor_SleepUsesSessionsWhenAggregateEmpty(t *testing.T) {
	src := &fakeSource{
		buckets: []Bucket{{StartTimeMillis: millis(t, "2025-07-01T00:00:00Z")}},
		sessions: []Session{
			{Name: "night", StartTimeMillis: millis(t, "2025-07-01T23:30:00Z"), EndTimeMillis: millis(t, "2025-07-02T00:45:00Z")},
			{Name: "broken", StartTimeMillis: millis(t, "2025-07-02T05:00:00Z"), EndTimeMillis: millis(t, "2025-07-02T05:00:00Z")},
		},
	}

	res := NewExtractor(src, zap.NewNop()).Extract(context.Background(), Sleep, window(t))

	assert.Equal(t, "interval_listing", res.Tier)
	require.Len(t, res.Intervals, 1)
	assert.Equal(t, "night", res.Intervals[0].Label)
	assert.Equal(t, []string{"aggregate:com.google.sleep.segment", "sessions"}, src.calls)
}

func TestExtractor_SleepSegmentsFromAggregateDropAwake(t *testing.T) {
	nanos := func(ts string) int64 { return millis(t, ts) * 1_000_000 }
	src := &fakeSource{
		buckets: []Bucket{{StartTimeMillis: millis(t, "2025-07-01T00:00:00Z"), Points: []Point{
			{StartTimeNanos: nanos("2025-07-01T22:00:00Z"), EndTimeNanos: nanos("2025-07-01T23:00:00Z"), Values: []Value{{IntVal: Int64(StageLight)}}},
			{StartTimeNanos: nanos("2025-07-01T23:00:00Z"), EndTimeNanos: nanos("2025-07-01T23:10:00Z"), Values: []Value{{IntVal: Int64(StageAwake)}}},
			{StartTimeNanos: nanos("2025-07-01T23:10:00Z"), EndTimeNanos: nanos("2025-07-02T01:00:00Z"), Values: []Value{{IntVal: Int64(StageDeep)}}},
		}}},
	}

	e := NewExtractor(src, zap.NewNop())
	daily, res := e.Daily(context.Background(), Sleep, window(t))

	assert.Equal(t, "bulk_aggregate", res.Tier)
	require.Len(t, res.Intervals, 2)
	assert.Equal(t, "light", res.Intervals[0].Label)
	assert.Equal(t, series.DailySeries{
		{Date: "2025-07-01", Value: 110},
		{Date: "2025-07-02", Value: 60},
		{Date: "2025-07-03", Value: 0},
	}, daily)
}

func TestExtractor_AllTiersExhausted(t *testing.T) {
	src := &fakeSource{
		bucketsErr: errors.New("network down"),
		sessionErr: errors.New("network down"),
		sourcesErr: errors.New("network down"),
	}

	e := NewExtractor(src, zap.NewNop())
	res := e.Extract(context.Background(), Sleep, window(t))
	assert.True(t, res.Empty())
	assert.Empty(t, res.Tier)

	daily, _ := e.Daily(context.Background(), Sleep, window(t))
	assert.Equal(t, series.DailySeries{
		{Date: "2025-07-01"}, {Date: "2025-07-02"}, {Date: "2025-07-03"},
	}, daily)
}

// scriptedTier lets the tier order itself be tested.
type scriptedTier struct {
	name  string
	res   Result
	err   error
	tried *[]string
}

func (s scriptedTier) Name() string { return s.name }

func (s scriptedTier) Attempt(context.Context, Request) (Result, error) {
	*s.tried = append(*s.tried, s.name)
	return s.res, s.err
}

func TestExtractor_TierOrderAndShortCircuit(t *testing.T) {
	var tried []string
	tier3 := Result{Samples: []series.RawSample{{TimestampMillis: 1, Value: 7}}}
	e := NewExtractorWithTiers(zap.NewNop(),
		scriptedTier{name: "one", err: errors.New("boom"), tried: &tried},
		scriptedTier{name: "two", tried: &tried},
		scriptedTier{name: "three", res: tier3, tried: &tried},
		scriptedTier{name: "four", res: tier3, tried: &tried},
	)

	res := e.Extract(context.Background(), Steps, window(t))

	assert.Equal(t, []string{"one", "two", "three"}, tried)
	assert.Equal(t, "three", res.Tier)
	assert.Equal(t, tier3.Samples, res.Samples)
	assert.Equal(t, []string{"one", "two", "three", "four"}, e.Tiers())
}

func TestExtractor_CancelledContext(t *testing.T) {
	var tried []string
	e := NewExtractorWithTiers(zap.NewNop(), scriptedTier{name: "one", tried: &tried})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, e.Extract(ctx, Steps, window(t)).Empty())
	assert.Empty(t, tried)
}

func TestPointValue_AccessorPriority(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"int_first", Point{Values: []Value{{IntVal: Int64(5), FpVal: Float64(9.5)}}}, 5},
		{"float_when_no_int", Point{Values: []Value{{FpVal: Float64(72.5)}}}, 72.5},
		{"map_entry", Point{Values: []Value{{MapVal: []MapEntry{{Key: "a"}, {Key: "b", FpVal: Float64(3.25)}}}}}, 3.25},
		{"only_first_value_read", Point{Values: []Value{{}, {IntVal: Int64(8)}}}, 0},
		{"no_values", Point{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pointValue(tt.p))
		})
	}
}

func TestPointSamples_TimestampNormalization(t *testing.T) {
	got := pointSamples([]Point{
		{StartTimeMillis: 1_751_328_000_000, Values: []Value{{IntVal: Int64(1)}}},
		{StartTimeNanos: 1_751_328_000_000_000_000, Values: []Value{{IntVal: Int64(2)}}},
		{Values: []Value{{IntVal: Int64(3)}}},
	})

	assert.Equal(t, []series.RawSample{
		{TimestampMillis: 1_751_328_000_000, Value: 1},
		{TimestampMillis: 1_751_328_000_000, Value: 2},
	}, got)
}

func TestBucketSample_AverageReduction(t *testing.T) {
	s, ok := bucketSample(HeartRate, Bucket{StartTimeMillis: 1000, Points: []Point{
		{Values: []Value{{FpVal: Float64(60)}}},
		{Values: []Value{{FpVal: Float64(80)}}},
	}})
	require.True(t, ok)
	assert.Equal(t, series.RawSample{TimestampMillis: 1000, Value: 70}, s)
}

func TestBucketSample_SummaryFacets(t *testing.T) {
	summary := func(avg, max, min float64) Point {
		return Point{Values: []Value{{FpVal: Float64(avg)}, {FpVal: Float64(max)}, {FpVal: Float64(min)}}}
	}

	s, ok := bucketSample(HeartRate, Bucket{StartTimeMillis: 1000, Points: []Point{
		summary(70, 120, 50),
		summary(80, 110, 45),
	}})
	require.True(t, ok)
	assert.Equal(t, series.RawSample{TimestampMillis: 1000, Value: 75, Min: 45, Max: 120}, s)

	// Kinds without summary facets ignore the trailing values.
	s, ok = bucketSample(Steps, Bucket{StartTimeMillis: 1000, Points: []Point{
		{Values: []Value{{IntVal: Int64(4200)}, {IntVal: Int64(9)}, {IntVal: Int64(1)}}},
	}})
	require.True(t, ok)
	assert.Equal(t, series.RawSample{TimestampMillis: 1000, Value: 4200}, s)
}

func TestExtractor_HeartRateDailyUsesSummaryRange(t *testing.T) {
	summary := func(avg, max, min float64) Point {
		return Point{Values: []Value{{FpVal: Float64(avg)}, {FpVal: Float64(max)}, {FpVal: Float64(min)}}}
	}
	src := &fakeSource{buckets: []Bucket{
		{StartTimeMillis: millis(t, "2025-07-01T08:00:00Z"), Points: []Point{summary(70, 120, 50)}},
		{StartTimeMillis: millis(t, "2025-07-01T08:30:00Z"), Points: []Point{summary(80, 130, 60)}},
		{StartTimeMillis: millis(t, "2025-07-02T08:00:00Z")},
		{StartTimeMillis: millis(t, "2025-07-03T21:00:00Z"), Points: []Point{{Values: []Value{{FpVal: Float64(64)}}}}},
	}}

	got, res := NewExtractor(src, zap.NewNop()).HeartRateDaily(context.Background(), window(t))
	assert.Equal(t, "bulk_aggregate", res.Tier)
	assert.Equal(t, []series.HeartRateDailySummary{
		{Date: "2025-07-01", Average: 75, Min: 50, Max: 130, Count: 2},
		{Date: "2025-07-02"},
		{Date: "2025-07-03", Average: 64, Min: 64, Max: 64, Count: 1},
	}, got)
}

func TestLookupMetric(t *testing.T) {
	k, ok := LookupMetric("Heart-Rate")
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, k.BucketDuration)

	_, ok = LookupMetric("blood-pressure")
	assert.False(t, ok)
	assert.Contains(t, MetricNames(), "sleep")
}
