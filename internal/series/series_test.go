package series

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, start, end string) TimeWindow {
	t.Helper()
	w, err := ParseWindow(start, end)
	require.NoError(t, err)
	return w
}

func ms(t *testing.T, ts string) int64 {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
	return parsed.UnixMilli()
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		days    int
		wantErr bool
	}{
		{name: "single_day", start: "2025-07-01", end: "2025-07-01", days: 1},
		{name: "week", start: "2025-07-01", end: "2025-07-07", days: 7},
		{name: "across_month", start: "2025-06-29", end: "2025-07-02", days: 4},
		{name: "leap_day", start: "2024-02-28", end: "2024-03-01", days: 3},
		{name: "reversed", start: "2025-07-07", end: "2025-07-01", wantErr: true},
		{name: "missing_end", start: "2025-07-01", end: "", wantErr: true},
		{name: "bad_format", start: "07/01/2025", end: "2025-07-02", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.start, tt.end)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.days, w.Days())
			assert.Len(t, w.Dates(), tt.days)
		})
	}
}

func TestTimeWindow_MillisCoverWholeEndDate(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-02")

	assert.Equal(t, ms(t, "2025-07-01T00:00:00Z"), w.StartMillis())
	assert.Equal(t, ms(t, "2025-07-03T00:00:00Z")-1, w.EndMillis())
	assert.True(t, w.Contains(ms(t, "2025-07-02T23:59:59Z")))
	assert.False(t, w.Contains(ms(t, "2025-07-03T00:00:00Z")))
}

func TestAggregateIntervals_SplitsAtMidnight(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-02")
	got := AggregateIntervals([]RawInterval{{
		StartMillis: ms(t, "2025-07-01T23:30:00Z"),
		EndMillis:   ms(t, "2025-07-02T00:45:00Z"),
	}}, w)

	want := DailySeries{
		{Date: "2025-07-01", Value: 30},
		{Date: "2025-07-02", Value: 45},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AggregateIntervals() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateIntervals_SingleDay(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-03")
	got := AggregateIntervals([]RawInterval{{
		StartMillis: ms(t, "2025-07-01T01:00:00Z"),
		EndMillis:   ms(t, "2025-07-01T01:10:00Z"),
	}}, w)

	assert.Equal(t, DailySeries{{Date: "2025-07-01", Value: 10}}, got)
}

func TestAggregateIntervals_MultiDayAndFloor(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-03")
	got := AggregateIntervals([]RawInterval{
		// 22:00 on the 1st to 02:00 on the 3rd: 120 + 1440 + 120.
		{StartMillis: ms(t, "2025-07-01T22:00:00Z"), EndMillis: ms(t, "2025-07-03T02:00:00Z")},
		// 59 seconds floors to zero minutes.
		{StartMillis: ms(t, "2025-07-03T05:00:00Z"), EndMillis: ms(t, "2025-07-03T05:00:59Z")},
		// Inverted intervals are ignored.
		{StartMillis: ms(t, "2025-07-02T05:00:00Z"), EndMillis: ms(t, "2025-07-02T04:00:00Z")},
	}, w)

	want := DailySeries{
		{Date: "2025-07-01", Value: 120},
		{Date: "2025-07-02", Value: 1440},
		{Date: "2025-07-03", Value: 120},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AggregateIntervals() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatePoints(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-03")
	samples := []RawSample{
		{TimestampMillis: ms(t, "2025-07-03T08:00:00Z"), Value: 300},
		{TimestampMillis: ms(t, "2025-07-01T08:00:00Z"), Value: 1000},
		{TimestampMillis: ms(t, "2025-07-01T20:00:00Z"), Value: 500},
		{TimestampMillis: ms(t, "2025-07-05T08:00:00Z"), Value: 9999},
	}

	t.Run("sum", func(t *testing.T) {
		got := AggregatePoints(samples, w, ReductionSum)
		assert.Equal(t, DailySeries{
			{Date: "2025-07-01", Value: 1500},
			{Date: "2025-07-03", Value: 300},
		}, got)
	})

	t.Run("average", func(t *testing.T) {
		got := AggregatePoints(samples, w, ReductionAverage)
		assert.Equal(t, DailySeries{
			{Date: "2025-07-01", Value: 750},
			{Date: "2025-07-03", Value: 300},
		}, got)
	})
}

func TestAggregateHeartRate(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-02")
	got := AggregateHeartRate([]RawSample{
		{TimestampMillis: ms(t, "2025-07-01T08:00:00Z"), Value: 60},
		{TimestampMillis: ms(t, "2025-07-01T09:00:00Z"), Value: 91},
		{TimestampMillis: ms(t, "2025-07-01T10:00:00Z"), Value: 0},
		{TimestampMillis: ms(t, "2025-07-02T10:00:00Z"), Value: 70},
	}, w)

	assert.Equal(t, []HeartRateDailySummary{
		{Date: "2025-07-01", Average: 75.5, Min: 60, Max: 91, Count: 2},
		{Date: "2025-07-02", Average: 70, Min: 70, Max: 70, Count: 1},
	}, got)
}

func TestAggregateHeartRate_SummarizedSamples(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-01")
	got := AggregateHeartRate([]RawSample{
		{TimestampMillis: ms(t, "2025-07-01T08:00:00Z"), Value: 70, Min: 50, Max: 120},
		{TimestampMillis: ms(t, "2025-07-01T12:00:00Z"), Value: 90},
	}, w)

	assert.Equal(t, []HeartRateDailySummary{
		{Date: "2025-07-01", Average: 80, Min: 50, Max: 120, Count: 2},
	}, got)
}

func TestFill_CompletenessInvariant(t *testing.T) {
	windows := [][2]string{
		{"2025-07-01", "2025-07-01"},
		{"2025-07-01", "2025-07-07"},
		{"2025-02-25", "2025-03-04"},
		{"2024-12-30", "2025-01-02"},
	}
	inputs := []DailySeries{
		nil,
		{{Date: "2025-07-03", Value: 5}, {Date: "2025-07-01", Value: 7}},
		{{Date: "2024-12-31", Value: 1}, {Date: "2030-01-01", Value: 3}},
	}

	for _, win := range windows {
		w := mustWindow(t, win[0], win[1])
		for _, in := range inputs {
			got := Fill(in, w, 0)
			require.Len(t, got, w.Days())
			assert.Equal(t, w.Start.Format(DateLayout), got[0].Date)
			assert.Equal(t, w.End.Format(DateLayout), got[len(got)-1].Date)
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1].Date, got[i].Date, "dates must strictly increase")
			}
		}
	}
}

func TestFill_SubstitutesDefaultAndSorts(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-04")
	got := Fill(DailySeries{
		{Date: "2025-07-03", Value: 5},
		{Date: "2025-07-01", Value: 7},
	}, w, -1)

	want := DailySeries{
		{Date: "2025-07-01", Value: 7},
		{Date: "2025-07-02", Value: -1},
		{Date: "2025-07-03", Value: 5},
		{Date: "2025-07-04", Value: -1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fill() mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_Idempotent(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-10")
	once := Fill(DailySeries{{Date: "2025-07-05", Value: 42}}, w, 0)
	twice := Fill(once, w, 0)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Fill() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFillHeartRate(t *testing.T) {
	w := mustWindow(t, "2025-07-01", "2025-07-03")
	got := FillHeartRate([]HeartRateDailySummary{
		{Date: "2025-07-02", Average: 70, Min: 60, Max: 80, Count: 4},
	}, w)

	require.Len(t, got, 3)
	assert.Equal(t, HeartRateDailySummary{Date: "2025-07-01"}, got[0])
	assert.Equal(t, 4, got[1].Count)
	assert.Equal(t, DailySeries{
		{Date: "2025-07-01", Value: 0},
		{Date: "2025-07-02", Value: 70},
		{Date: "2025-07-03", Value: 0},
	}, HeartRateAverages(got))
}
