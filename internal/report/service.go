// Package report orchestrates one report request: window validation,
// credential, tiered extraction, gap filling, statistics, text generation
// and recovery of the generated report.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitreport/internal/articulation"
	"fitreport/internal/extraction"
	"fitreport/internal/generation"
	"fitreport/internal/logging"
	"fitreport/internal/series"
	"fitreport/internal/stats"
	"fitreport/internal/usage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// CredentialProvider supplies a live, already refreshed token.
type CredentialProvider interface {
	Credential(ctx context.Context) (*oauth2.Token, error)
}

// SourceFactory builds a metric source authorized by a token.
type SourceFactory func(ctx context.Context, token *oauth2.Token) (extraction.Source, error)

// Options tune a Service.
type Options struct {
	// GenerationTimeout bounds the text-generation call only.
	GenerationTimeout time.Duration
	// IncludeHeartRate adds daily heart-rate summaries to activity reports.
	IncludeHeartRate bool
	// Usage, when set, is charged with the tokens of every generation call.
	Usage *usage.Tracker
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Service builds reports. It holds no per-request state and is safe to
// reuse across requests.
type Service struct {
	creds     CredentialProvider
	sources   SourceFactory
	generator generation.Generator
	logs      *logging.Logger
	logger    *zap.Logger
	opts      Options
}

// NewService wires a Service.
func NewService(creds CredentialProvider, sources SourceFactory, generator generation.Generator, logs *logging.Logger, opts Options) *Service {
	if logs == nil {
		logs = logging.Wrap(nil)
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		creds:     creds,
		sources:   sources,
		generator: generator,
		logs:      logs,
		logger:    logs.For(logging.CategoryReport),
		opts:      opts,
	}
}

// Build produces a report of the given kind for the inclusive window
// [start, end], both YYYY-MM-DD.
func (s *Service) Build(ctx context.Context, kind Kind, start, end string) (*Report, error) {
	if kind != KindActivity && kind != KindSleep {
		return nil, fmt.Errorf("%w: unknown report kind %q", ErrInvalidInput, kind)
	}
	window, err := series.ParseWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	requestID := uuid.NewString()
	audit := s.logs.NewAuditor(requestID)
	audit.Event(logging.AuditRequestStart, zap.String("kind", string(kind)), zap.Stringer("window", window))

	extractor, err := s.extractor(ctx)
	if err != nil {
		audit.Fail(logging.AuditRequestEnd, err)
		return nil, err
	}

	rep := &Report{RequestID: requestID, Kind: kind, Window: windowOf(window)}
	var inputs map[string]any
	switch kind {
	case KindSleep:
		daily, res := extractor.Daily(ctx, extraction.Sleep, window)
		audit.Event(logging.AuditExtraction, zap.String("metric", extraction.Sleep.Name), zap.String("tier", res.Tier))
		rep.Series, rep.SourceTier = daily, res.Tier
		rep.Stats = stats.Summarize(daily)
		rep.Assessment = stats.SleepQuality(rep.Stats)
		inputs = sleepInputs(window, daily, rep.Stats)
	default:
		daily, res := extractor.Daily(ctx, extraction.Steps, window)
		audit.Event(logging.AuditExtraction, zap.String("metric", extraction.Steps.Name), zap.String("tier", res.Tier))
		rep.Series, rep.SourceTier = daily, res.Tier
		if s.opts.IncludeHeartRate {
			hr, hrRes := extractor.HeartRateDaily(ctx, window)
			audit.Event(logging.AuditExtraction, zap.String("metric", extraction.HeartRate.Name), zap.String("tier", hrRes.Tier))
			if !hrRes.Empty() {
				rep.HeartRate = hr
			}
		}
		rep.Stats = stats.Summarize(daily)
		rep.Assessment = stats.ActivityLevel(rep.Stats)
		inputs = activityInputs(window, daily, rep.Stats, rep.HeartRate)
	}
	rep.Completeness = stats.Completeness(rep.Stats, window.Days())
	rep.PeakDay = stats.PeakDay(rep.Series)

	schema := kind.Schema()
	raw, err := s.generate(ctx, inputs, schema, audit)
	if err != nil {
		audit.Fail(logging.AuditRequestEnd, err)
		return nil, err
	}

	rec, err := articulation.Recover(raw, schema, inputs)
	if err != nil {
		var recErr *articulation.RecoveryError
		if errors.As(err, &recErr) {
			s.logs.For(logging.CategoryArticulation).Warn("report recovery failed",
				zap.String("request_id", requestID),
				zap.String("sanitized", recErr.Sanitized),
				zap.Error(recErr.Err))
		}
		audit.Fail(logging.AuditRecovery, err)
		return nil, err
	}
	audit.Event(logging.AuditRecovery, zap.String("method", string(rec.Method)), zap.Strings("steps", rec.Steps))
	for _, w := range rec.Warnings {
		s.logs.For(logging.CategoryArticulation).Debug("schema warning", zap.String("request_id", requestID), zap.String("warning", w))
	}

	rep.Narrative = rec.Value
	rep.RecoveryMethod = string(rec.Method)
	rep.RecoverySteps = rec.Steps
	rep.Warnings = rec.Warnings
	rep.GeneratedAt = s.opts.Now().UTC()

	audit.Event(logging.AuditRequestEnd)
	s.logger.Info("report built",
		zap.String("request_id", requestID),
		zap.String("kind", string(kind)),
		zap.Stringer("window", window),
		zap.Int("days_with_data", rep.Stats.DaysWithData),
		zap.String("assessment", rep.Assessment))
	return rep, nil
}

// Payload returns the gap-filled step and sleep series of the window
// without calling the text-generation service.
func (s *Service) Payload(ctx context.Context, start, end string) (*DataPayload, error) {
	window, err := series.ParseWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	extractor, err := s.extractor(ctx)
	if err != nil {
		return nil, err
	}

	steps, _ := extractor.Daily(ctx, extraction.Steps, window)
	sleep, _ := extractor.Daily(ctx, extraction.Sleep, window)
	return &DataPayload{
		Window:               windowOf(window),
		PhysicalActivityData: steps,
		SleepData:            sleep,
	}, nil
}

// extractor authenticates and builds a request-scoped extractor.
func (s *Service) extractor(ctx context.Context) (*extraction.Extractor, error) {
	if s.creds == nil {
		return nil, fmt.Errorf("%w: no credential provider configured", ErrUnauthenticated)
	}
	token, err := s.creds.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if s.sources == nil {
		return nil, errors.New("no metric source configured")
	}
	src, err := s.sources(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric source: %w", err)
	}
	return extraction.NewExtractor(src, s.logs.For(logging.CategoryExtraction)), nil
}

// generate calls the generator under the generation timeout and returns its
// first output. Every failure is an *generation.Error.
func (s *Service) generate(ctx context.Context, inputs map[string]any, schema articulation.Schema, audit *logging.Auditor) (any, error) {
	if s.generator == nil {
		return nil, &generation.Error{State: generation.StateFailed, Err: errors.New("no generator configured")}
	}
	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	audit.Event(logging.AuditGenerationRequest, zap.String("schema", schema.Name))
	resp, err := s.generator.Generate(genCtx, inputs, schema)
	if resp != nil && s.opts.Usage != nil {
		s.opts.Usage.Track(resp.Model, schema.Name, resp.InputTokens, resp.OutputTokens)
	}
	if err != nil {
		var genErr *generation.Error
		if !errors.As(err, &genErr) {
			err = &generation.Error{State: generation.StateFailed, Err: err}
		}
		audit.Fail(logging.AuditGenerationResult, err)
		return nil, err
	}

	raw, err := generation.Check(resp)
	if err != nil {
		audit.Fail(logging.AuditGenerationResult, err)
		return nil, err
	}
	audit.Event(logging.AuditGenerationResult, zap.String("state", resp.State))
	return raw, nil
}
