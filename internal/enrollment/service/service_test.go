package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"matricula/internal/audit"
	"matricula/internal/enrollment/metrics"
	"matricula/internal/enrollment/models"
	"matricula/internal/enrollment/service/mocks"
	dErrors "matricula/pkg/domain-errors"
	"matricula/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockStore  *mocks.MockStore
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.mockStore,
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validFields() models.Fields {
	return models.Fields{
		FirstName:  " Ana ",
		LastName:   "Lopez",
		DocumentID: "123",
		Email:      "a@b.co",
		Program:    "X",
	}
}

func requestCtx() context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "192.168.1.47", "")
	return requestcontext.WithTime(ctx, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

// Invariant: a rejected submission never reaches the store.
func (s *ServiceSuite) TestEnroll_ValidationFailure() {
	s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	raw := validFields()
	raw.Email = "bad"
	record, err := s.service.Enroll(requestCtx(), raw)

	s.Nil(record)
	var verr *models.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal([]string{models.MsgEmailInvalid}, verr.Messages)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeRejected)))

	events, _ := s.auditStore.List(context.Background())
	s.Require().Len(events, 1)
	s.Equal(models.AuditActionEnrollmentRejected, events[0].Action)
	s.Equal(models.MsgEmailInvalid, events[0].Reason)
	s.Equal("192.168.1.0", events[0].ClientIP)
}

func (s *ServiceSuite) TestEnroll_StoresNormalizedFields() {
	ctx := requestCtx()
	stored := models.NewRecord("rec-1", validFields().Normalize(), requestcontext.Now(ctx))

	s.mockStore.EXPECT().Append(gomock.Any(), validFields().Normalize()).Return(stored, nil)
	s.mockStore.EXPECT().Count(gomock.Any()).Return(7, nil)

	record, err := s.service.Enroll(ctx, validFields())

	s.Require().NoError(err)
	s.Equal(models.RecordID("rec-1"), record.ID)
	s.Equal("Ana", record.FirstName)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeAccepted)))
	s.Equal(7.0, promtest.ToFloat64(s.metrics.RecordsStored))

	events, _ := s.auditStore.List(context.Background())
	s.Require().Len(events, 1)
	s.Equal(models.AuditActionEnrollmentSubmitted, events[0].Action)
	s.Equal("rec-1", events[0].Subject)
	s.Equal("req-1", events[0].RequestID)
	s.Equal(requestcontext.Now(ctx), events[0].Timestamp)
}

func (s *ServiceSuite) TestEnroll_StoreFailureIsInternal() {
	s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	record, err := s.service.Enroll(requestCtx(), validFields())

	s.Nil(record)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Submissions.WithLabelValues(metrics.OutcomeFailed)))
	events, _ := s.auditStore.List(context.Background())
	s.Empty(events)
}

func (s *ServiceSuite) TestEnroll_AuditFailureDoesNotFailSubmission() {
	publisher := mocks.NewMockAuditPublisher(s.ctrl)
	svc := New(s.mockStore, WithAuditPublisher(publisher))

	s.mockStore.EXPECT().Append(gomock.Any(), gomock.Any()).
		Return(models.NewRecord("rec-2", validFields().Normalize(), time.Now()), nil)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	record, err := svc.Enroll(requestCtx(), validFields())

	s.Require().NoError(err)
	s.Equal(models.RecordID("rec-2"), record.ID)
}

func (s *ServiceSuite) TestList() {
	s.Run("wraps records in a listing", func() {
		records := []models.Record{
			*models.NewRecord("a", validFields(), time.Now()),
			*models.NewRecord("b", validFields(), time.Now()),
		}
		s.mockStore.EXPECT().List(gomock.Any()).Return(records, nil)

		listing, err := s.service.List(context.Background())

		s.Require().NoError(err)
		s.Equal(2, listing.Total)
		s.Equal(models.RecordID("a"), listing.Items[0].ID)
		s.Equal(models.RecordID("b"), listing.Items[1].ID)
	})

	s.Run("store errors are internal", func() {
		s.mockStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := s.service.List(context.Background())

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
