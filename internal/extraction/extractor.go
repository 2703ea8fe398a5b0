// Package extraction retrieves raw metric samples through an ordered list of
// fallback tiers. A tier failing is never fatal: the extractor logs it and
// moves on, and running out of tiers is a valid "no data" outcome.
package extraction

import (
	"context"
	"errors"
	"time"

	"fitreport/internal/series"

	"go.uber.org/zap"
)

// Extractor walks its tiers in order and stops at the first non-empty result.
type Extractor struct {
	tiers  []Tier
	logger *zap.Logger
}

// NewExtractor wires the default tier order against one source:
// bulk aggregate, interval listing, source enumeration.
func NewExtractor(src Source, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewExtractorWithTiers(logger,
		&BulkAggregateTier{Source: src},
		&IntervalListingTier{Source: src, Logger: logger},
		&SourceEnumerationTier{Source: src, Logger: logger},
	)
}

// NewExtractorWithTiers uses an explicit tier order.
func NewExtractorWithTiers(logger *zap.Logger, tiers ...Tier) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{tiers: tiers, logger: logger}
}

// Tiers returns the tier names in attempt order.
func (e *Extractor) Tiers() []string {
	names := make([]string, len(e.tiers))
	for i, t := range e.tiers {
		names[i] = t.Name()
	}
	return names
}

// Extract never fails for missing data; it returns an empty Result instead.
func (e *Extractor) Extract(ctx context.Context, kind MetricKind, window series.TimeWindow) Result {
	req := Request{Kind: kind, Window: window}
	for _, tier := range e.tiers {
		if ctx.Err() != nil {
			e.logger.Warn("extraction stopped", zap.String("metric", kind.Name), zap.Error(ctx.Err()))
			return Result{}
		}

		start := time.Now()
		res, err := tier.Attempt(ctx, req)
		switch {
		case errors.Is(err, ErrNotApplicable):
			continue
		case err != nil:
			e.logger.Warn("extraction tier failed",
				zap.String("tier", tier.Name()),
				zap.String("metric", kind.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			continue
		case res.Empty():
			e.logger.Debug("extraction tier returned no data",
				zap.String("tier", tier.Name()),
				zap.String("metric", kind.Name))
			continue
		}

		res.Tier = tier.Name()
		e.logger.Info("extraction complete",
			zap.String("tier", res.Tier),
			zap.String("metric", kind.Name),
			zap.Int("samples", len(res.Samples)),
			zap.Int("intervals", len(res.Intervals)),
			zap.Duration("elapsed", time.Since(start)))
		return res
	}

	e.logger.Info("no data from any tier",
		zap.String("metric", kind.Name),
		zap.String("window", window.String()))
	return Result{}
}

// Daily runs the extraction and reduces the result to a gap-filled series.
func (e *Extractor) Daily(ctx context.Context, kind MetricKind, window series.TimeWindow) (series.DailySeries, Result) {
	res := e.Extract(ctx, kind, window)
	var daily series.DailySeries
	if kind.Shape == ShapeInterval {
		daily = series.AggregateIntervals(res.Intervals, window)
	} else {
		daily = series.AggregatePoints(res.Samples, window, kind.Reduction)
	}
	return series.Fill(daily, window, 0), res
}

// HeartRateDaily extracts heart-rate samples and returns one summary per
// date of the window, missing dates zeroed.
func (e *Extractor) HeartRateDaily(ctx context.Context, window series.TimeWindow) ([]series.HeartRateDailySummary, Result) {
	res := e.Extract(ctx, HeartRate, window)
	summaries := series.AggregateHeartRate(res.Samples, window)
	return series.FillHeartRate(summaries, window), res
}
