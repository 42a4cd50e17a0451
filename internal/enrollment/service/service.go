package service

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"matricula/internal/audit"
	"matricula/internal/enrollment/metrics"
	"matricula/internal/enrollment/models"
	dErrors "matricula/pkg/domain-errors"
	"matricula/pkg/platform/privacy"
	"matricula/pkg/requestcontext"
)

// Store is the append-only record store.
// Error Contract:
// - Append assigns id and timestamp and returns the stored record
// - List returns every record in insertion order (never nil)
// - Any error is an infrastructure failure
type Store interface {
	Append(ctx context.Context, fields models.Fields) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
}

// AuditPublisher records enrollment decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// Service validates submissions and appends accepted ones to the store.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = otel.Tracer("matricula/enrollment")
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditPublisher enables the audit trail.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Enroll validates raw fields and stores the normalized record.
// A rejected submission returns *models.ValidationError and never touches the store.
func (s *Service) Enroll(ctx context.Context, raw models.Fields) (record *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.Enroll")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	result := models.Validate(raw)
	if !result.OK() {
		span.SetAttributes(attribute.Int("enrollment.validation_errors", len(result.Errors)))
		s.metrics.IncSubmission(metrics.OutcomeRejected)
		s.metrics.IncValidationFailures(result.Errors)
		s.emit(ctx, audit.Event{
			Action:   models.AuditActionEnrollmentRejected,
			Decision: models.AuditDecisionRejected,
			Reason:   strings.Join(result.Errors, "; "),
		})
		return nil, result.Err()
	}

	record, err = s.store.Append(ctx, result.Fields)
	if err != nil {
		s.metrics.IncSubmission(metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "failed to store enrollment",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store enrollment")
	}

	span.SetAttributes(
		attribute.String("enrollment.id", record.ID.String()),
		attribute.String("enrollment.program", record.Program),
	)
	s.metrics.IncSubmission(metrics.OutcomeAccepted)
	s.refreshRecordCount(ctx)
	s.emit(ctx, audit.Event{
		Action:   models.AuditActionEnrollmentSubmitted,
		Subject:  record.ID.String(),
		Decision: models.AuditDecisionAccepted,
	})
	s.logger.InfoContext(ctx, "enrollment registered",
		"id", record.ID,
		"program", record.Program,
		"request_id", requestcontext.RequestID(ctx),
	)
	return record, nil
}

// List returns every stored record in insertion order.
func (s *Service) List(ctx context.Context) (*models.Listing, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list enrollments",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list enrollments")
	}
	return models.NewListing(records), nil
}

// RefreshRecordCount seeds the stored-records gauge, e.g. at startup against a durable store.
func (s *Service) RefreshRecordCount(ctx context.Context) {
	s.refreshRecordCount(ctx)
}

func (s *Service) refreshRecordCount(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count enrollments", "error", err)
		return
	}
	s.metrics.SetRecordsStored(n)
}

// emit never fails the submission; audit errors are logged.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
	event.Client = audit.ClientSummary(requestcontext.UserAgent(ctx))
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
