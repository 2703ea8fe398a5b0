package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names one step of a report request worth keeping a trail
// of.
type AuditEventType string

const (
	AuditRequestStart      AuditEventType = "request_start"
	AuditExtraction        AuditEventType = "extraction"
	AuditGenerationRequest AuditEventType = "generation_request"
	AuditGenerationResult  AuditEventType = "generation_result"
	AuditRecovery          AuditEventType = "recovery"
	AuditRequestEnd        AuditEventType = "request_end"
)

// Auditor writes audit events for one request, correlated by request id.
type Auditor struct {
	logger    *zap.Logger
	requestID string
	start     time.Time
}

// NewAuditor starts an audit trail for a request.
func (l *Logger) NewAuditor(requestID string) *Auditor {
	return &Auditor{
		logger:    l.For(CategoryAudit).With(zap.String("request_id", requestID)),
		requestID: requestID,
		start:     time.Now(),
	}
}

// Event records one audit event with its elapsed time since the request
// started.
func (a *Auditor) Event(event AuditEventType, fields ...zap.Field) {
	fields = append(fields,
		zap.String("event", string(event)),
		zap.Duration("elapsed", time.Since(a.start)))
	a.logger.Info("audit", fields...)
}

// Fail records an event that ended in an error.
func (a *Auditor) Fail(event AuditEventType, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("event", string(event)),
		zap.Duration("elapsed", time.Since(a.start)),
		zap.Error(err))
	a.logger.Warn("audit", fields...)
}
