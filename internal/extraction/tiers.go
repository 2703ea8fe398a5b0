package extraction

import (
	"context"
	"errors"
	"fmt"

	"fitreport/internal/series"

	"go.uber.org/zap"
)

// ErrNotApplicable is returned by a tier that does not serve a metric shape.
var ErrNotApplicable = errors.New("tier not applicable to metric")

// Request is what every tier is asked for.
type Request struct {
	Kind   MetricKind
	Window series.TimeWindow
}

// Result holds either point samples or intervals, depending on the metric.
type Result struct {
	Samples   []series.RawSample
	Intervals []series.RawInterval
	// Tier names the tier that produced the data; empty when none did.
	Tier string
}

// Empty reports whether the result carries no data at all.
func (r Result) Empty() bool {
	return len(r.Samples) == 0 && len(r.Intervals) == 0
}

// Tier is one fallback strategy of the extractor.
type Tier interface {
	Name() string
	Attempt(ctx context.Context, req Request) (Result, error)
}

// BulkAggregateTier asks for pre-bucketed data over the whole window in a
// single call.
type BulkAggregateTier struct {
	Source Source
}

func (t *BulkAggregateTier) Name() string { return "bulk_aggregate" }

func (t *BulkAggregateTier) Attempt(ctx context.Context, req Request) (Result, error) {
	buckets, err := t.Source.AggregateQuery(ctx, req.Kind.DataType, req.Kind.BucketMillis(),
		req.Window.StartMillis(), req.Window.EndMillis())
	if err != nil {
		return Result{}, fmt.Errorf("aggregate %s: %w", req.Kind.DataType, err)
	}

	var res Result
	for _, b := range buckets {
		if req.Kind.Shape == ShapeInterval {
			res.Intervals = append(res.Intervals, pointIntervals(req.Kind, b.Points)...)
			continue
		}
		if s, ok := bucketSample(req.Kind, b); ok {
			res.Samples = append(res.Samples, s)
		}
	}
	return res, nil
}

// IntervalListingTier lists session records for interval-shaped metrics.
type IntervalListingTier struct {
	Source Source
	Logger *zap.Logger
}

func (t *IntervalListingTier) Name() string { return "interval_listing" }

func (t *IntervalListingTier) Attempt(ctx context.Context, req Request) (Result, error) {
	if req.Kind.Shape != ShapeInterval {
		return Result{}, ErrNotApplicable
	}
	sessions, err := t.Source.ListIntervals(ctx, req.Kind.SessionActivityType,
		req.Window.StartMillis(), req.Window.EndMillis())
	if err != nil {
		return Result{}, fmt.Errorf("list sessions type=%d: %w", req.Kind.SessionActivityType, err)
	}

	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("sessions listed",
		zap.String("metric", req.Kind.Name),
		zap.String("window", req.Window.String()),
		zap.Int("count", len(sessions)))
	for _, s := range sessions[:min(3, len(sessions))] {
		logger.Debug("session",
			zap.Int64("start_ms", s.StartTimeMillis),
			zap.Int64("end_ms", s.EndTimeMillis),
			zap.String("name", s.Name))
	}

	var res Result
	for _, s := range sessions {
		iv := series.RawInterval{StartMillis: s.StartTimeMillis, EndMillis: s.EndTimeMillis, Label: s.Name}
		if iv.Valid() {
			res.Intervals = append(res.Intervals, iv)
		}
	}
	return res, nil
}

// SourceEnumerationTier lists every raw source whose declared data type
// matches the metric and queries them one by one, in listed order, until
// one returns data.
type SourceEnumerationTier struct {
	Source Source
	Logger *zap.Logger
}

func (t *SourceEnumerationTier) Name() string { return "source_enumeration" }

func (t *SourceEnumerationTier) Attempt(ctx context.Context, req Request) (Result, error) {
	descriptors, err := t.Source.ListSources(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list sources: %w", err)
	}

	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for _, d := range descriptors {
		if !req.Kind.MatchesSource(d.DataType) {
			continue
		}
		points, err := t.Source.QuerySource(ctx, d.ID, req.Window.StartMillis(), req.Window.EndMillis())
		if err != nil {
			logger.Warn("source query failed",
				zap.String("source", d.ID),
				zap.Error(err))
			lastErr = err
			continue
		}

		var res Result
		if req.Kind.Shape == ShapeInterval {
			res.Intervals = pointIntervals(req.Kind, points)
		} else {
			res.Samples = pointSamples(points)
		}
		if !res.Empty() {
			logger.Debug("source returned data",
				zap.String("source", d.ID),
				zap.Int("points", len(points)))
			return res, nil
		}
	}
	if lastErr != nil {
		return Result{}, fmt.Errorf("no matching source returned data: %w", lastErr)
	}
	return Result{}, nil
}
