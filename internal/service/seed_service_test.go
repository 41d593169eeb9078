package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/repository"
	"github.com/ignatzorin/watersafe-backend/internal/seed"
)

func TestSeedService_Default(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	fixtures, err := seed.Default()
	require.NoError(t, err)

	users := NewUserService(repository.NewBadgerUserRepository(env.conn, env.clock))
	svc := NewSeedService(env.service, users)

	res, err := svc.Seed(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 3, res.Reports)
	assert.False(t, res.ReportsSkipped)

	stats, err := env.query.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Investigating)
	assert.Equal(t, 1, stats.Resolved)

	reports, err := env.query.Filter(ctx, models.ReportFilter{Search: "downtown"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	lake := reports[0]
	assert.True(t, lake.Anonymous)
	assert.Nil(t, lake.SubmittedByName)
	assert.Equal(t, "25.2,89.3", *lake.Coordinates)
	assert.Equal(t, "[discoloration] Unusual water discoloration observed", lake.Description)
	require.NotNil(t, lake.ResolvedAt)
	assert.Equal(t, "Increased monitoring frequency for 30 days", *lake.ActionTaken)

	// повторный запуск не дублирует обращения
	res, err = svc.Seed(ctx, fixtures)
	require.NoError(t, err)
	assert.True(t, res.ReportsSkipped)
	assert.Equal(t, 0, res.Reports)

	all, err := env.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	listed, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
