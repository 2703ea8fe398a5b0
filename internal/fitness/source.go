// Package fitness adapts the Google Fit REST API to the extraction.Source
// contract and supplies OAuth credentials for it.
package fitness

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fitreport/internal/extraction"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	fit "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// Config holds the REST client settings.
type Config struct {
	// Endpoint overrides the API base URL; empty uses the public endpoint.
	Endpoint string
	// Timeout bounds every metric query.
	Timeout time.Duration
}

// Source implements extraction.Source against Google Fit.
type Source struct {
	svc    *fit.Service
	logger *zap.Logger
}

// NewSource builds a client authorized by the given token. The token is used
// as-is; refreshing it is the credential provider's job.
func NewSource(ctx context.Context, token *oauth2.Token, cfg Config, logger *zap.Logger) (*Source, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("fitness: access token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: oauth2.StaticTokenSource(token)},
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := fit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fitness client: %w", err)
	}
	return &Source{svc: svc, logger: logger}, nil
}

// AggregateQuery calls dataset:aggregate with time buckets.
func (s *Source) AggregateQuery(ctx context.Context, dataType string, bucketMillis, startMillis, endMillis int64) ([]extraction.Bucket, error) {
	req := &fit.AggregateRequest{
		AggregateBy:     []*fit.AggregateBy{{DataTypeName: dataType}},
		BucketByTime:    &fit.BucketByTime{DurationMillis: bucketMillis},
		StartTimeMillis: startMillis,
		EndTimeMillis:   endMillis,
	}
	resp, err := s.svc.Users.Dataset.Aggregate(userID, req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	buckets := make([]extraction.Bucket, 0, len(resp.Bucket))
	for _, b := range resp.Bucket {
		if b == nil {
			continue
		}
		out := extraction.Bucket{StartTimeMillis: b.StartTimeMillis, EndTimeMillis: b.EndTimeMillis}
		for _, ds := range b.Dataset {
			if ds == nil {
				continue
			}
			out.Points = append(out.Points, convertPoints(ds.Point)...)
		}
		buckets = append(buckets, out)
	}
	s.logger.Debug("aggregate query",
		zap.String("data_type", dataType),
		zap.Int("buckets", len(buckets)))
	return buckets, nil
}

// ListIntervals lists sessions of one activity type, following pagination.
func (s *Source) ListIntervals(ctx context.Context, activityType int64, startMillis, endMillis int64) ([]extraction.Session, error) {
	call := s.svc.Users.Sessions.List(userID).
		StartTime(rfc3339(startMillis)).
		EndTime(rfc3339(endMillis)).
		ActivityType(activityType).
		Context(ctx)

	var sessions []extraction.Session
	for {
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, sess := range resp.Session {
			if sess == nil {
				continue
			}
			sessions = append(sessions, extraction.Session{
				ID:              sess.Id,
				Name:            sess.Name,
				ActivityType:    sess.ActivityType,
				StartTimeMillis: sess.StartTimeMillis,
				EndTimeMillis:   sess.EndTimeMillis,
			})
		}
		if resp.NextPageToken == "" {
			break
		}
		call = call.PageToken(resp.NextPageToken)
	}
	return sessions, nil
}

// ListSources lists the user's data sources in the order the API returns them.
func (s *Source) ListSources(ctx context.Context) ([]extraction.SourceDescriptor, error) {
	resp, err := s.svc.Users.DataSources.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]extraction.SourceDescriptor, 0, len(resp.DataSource))
	for _, ds := range resp.DataSource {
		if ds == nil {
			continue
		}
		d := extraction.SourceDescriptor{ID: ds.DataStreamId, Name: ds.DataStreamName}
		if ds.DataType != nil {
			d.DataType = ds.DataType.Name
		}
		out = append(out, d)
	}
	return out, nil
}

// QuerySource reads one source's dataset. Dataset ids are
// "<startNanos>-<endNanos>".
func (s *Source) QuerySource(ctx context.Context, sourceID string, startMillis, endMillis int64) ([]extraction.Point, error) {
	datasetID := strconv.FormatInt(startMillis*1_000_000, 10) + "-" + strconv.FormatInt(endMillis*1_000_000, 10)
	call := s.svc.Users.DataSources.Datasets.Get(userID, sourceID, datasetID).Context(ctx)

	var points []extraction.Point
	for {
		ds, err := call.Do()
		if err != nil {
			return nil, err
		}
		points = append(points, convertPoints(ds.Point)...)
		if ds.NextPageToken == "" {
			break
		}
		call = call.PageToken(ds.NextPageToken)
	}
	return points, nil
}

// convertPoints maps API points onto extraction points. Zero numeric fields
// are indistinguishable from absent ones in the API types and are left nil.
func convertPoints(in []*fit.DataPoint) []extraction.Point {
	out := make([]extraction.Point, 0, len(in))
	for _, p := range in {
		if p == nil {
			continue
		}
		pt := extraction.Point{StartTimeNanos: p.StartTimeNanos, EndTimeNanos: p.EndTimeNanos}
		for _, v := range p.Value {
			if v == nil {
				continue
			}
			pt.Values = append(pt.Values, convertValue(v))
		}
		out = append(out, pt)
	}
	return out
}

func convertValue(v *fit.Value) extraction.Value {
	out := extraction.Value{StringVal: v.StringVal}
	if v.IntVal != 0 {
		out.IntVal = extraction.Int64(v.IntVal)
	}
	if v.FpVal != 0 {
		out.FpVal = extraction.Float64(v.FpVal)
	}
	for _, e := range v.MapVal {
		if e == nil {
			continue
		}
		entry := extraction.MapEntry{Key: e.Key}
		if e.Value != nil {
			entry.FpVal = extraction.Float64(e.Value.FpVal)
		}
		out.MapVal = append(out.MapVal, entry)
	}
	return out
}

func rfc3339(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}
