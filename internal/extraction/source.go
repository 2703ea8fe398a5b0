package extraction

import "context"

// Source is the metric data source the extractor queries. Implementations
// translate their wire format into these shapes and leave absent fields nil
// or zero; the extractor checks each field for presence.
type Source interface {
	// AggregateQuery returns pre-bucketed data for one data type.
	AggregateQuery(ctx context.Context, dataType string, bucketMillis, startMillis, endMillis int64) ([]Bucket, error)
	// ListIntervals lists sessions of one activity type overlapping the range.
	ListIntervals(ctx context.Context, activityType int64, startMillis, endMillis int64) ([]Session, error)
	// ListSources lists every raw data source visible to the credential.
	ListSources(ctx context.Context) ([]SourceDescriptor, error)
	// QuerySource reads the raw points of one source.
	QuerySource(ctx context.Context, sourceID string, startMillis, endMillis int64) ([]Point, error)
}

// Value is one typed value of a point. Which field is populated depends on
// the data type and on the call that produced it.
type Value struct {
	IntVal    *int64
	FpVal     *float64
	MapVal    []MapEntry
	StringVal string
}

// MapEntry is one keyed floating-point value.
type MapEntry struct {
	Key   string
	FpVal *float64
}

// Point is a single data point. Timestamps arrive either as milliseconds or
// as nanoseconds depending on the call.
type Point struct {
	StartTimeMillis int64
	EndTimeMillis   int64
	StartTimeNanos  int64
	EndTimeNanos    int64
	Values          []Value
}

// Bucket is one pre-aggregated time slice.
type Bucket struct {
	StartTimeMillis int64
	EndTimeMillis   int64
	Points          []Point
}

// Session is a discrete activity record such as a night of sleep.
type Session struct {
	ID              string
	Name            string
	ActivityType    int64
	StartTimeMillis int64
	EndTimeMillis   int64
}

// SourceDescriptor identifies a raw data source and its declared data type.
type SourceDescriptor struct {
	ID       string
	DataType string
	Name     string
}

// Int64 and Float64 build Value fields in adapters and tests.
func Int64(v int64) *int64       { return &v }
func Float64(v float64) *float64 { return &v }
