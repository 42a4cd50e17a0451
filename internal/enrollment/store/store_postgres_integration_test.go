//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"matricula/internal/enrollment/models"
	"matricula/pkg/requestcontext"
	"matricula/pkg/testutil"
	"matricula/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) TestAppendAndListInOrder() {
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	a, err := s.store.Append(ctx, fields("A"))
	s.Require().NoError(err)
	b, err := s.store.Append(ctx, fields("B"))
	s.Require().NoError(err)

	items, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(a.ID, items[0].ID)
	s.Equal(b.ID, items[1].ID)
	s.Equal(now, items[0].CreatedAt)
	s.Equal("A", items[0].FirstName)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestEmptyListIsNotNil() {
	items, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.NotNil(items)
	s.Empty(items)
}

func (s *PostgresStoreSuite) TestRetriesOnIDCollision() {
	ctx := context.Background()
	ids := []models.RecordID{"fixed", "fixed", "other"}
	s.store.newID = func() models.RecordID {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	defer func() { s.store.newID = models.NewRecordID }()

	_, err := s.store.Append(ctx, fields("A"))
	s.Require().NoError(err)
	second, err := s.store.Append(ctx, fields("B"))
	s.Require().NoError(err)

	s.Equal(models.RecordID("other"), second.ID)
}

func (s *PostgresStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	result := testutil.RunConcurrent(20, func(int) error {
		_, err := s.store.Append(ctx, fields("writer"))
		return err
	})
	s.Equal(int32(20), result.Successes)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(20, count)
}
