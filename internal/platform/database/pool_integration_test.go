//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"matricula/pkg/testutil/containers"
)

func TestPoolAgainstContainer(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ctx := context.Background()

	pool, err := New(ctx, DefaultConfig(pg.DSN))
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.Health(ctx))
	require.NoError(t, pool.Migrate(ctx), "migrations are idempotent")
	require.NoError(t, pool.RegisterMetrics(prometheus.NewRegistry()))
}
