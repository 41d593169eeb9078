package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
)

func sampleReports() []models.Report {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(code, location, desc string, status models.ReportStatus, prio models.ReportPriority, coords *string, offset time.Duration) models.Report {
		return models.Report{
			ID:          uuid.New(),
			ReportCode:  code,
			Location:    location,
			Description: desc,
			Status:      status,
			Priority:    prio,
			Coordinates: coords,
			SubmittedAt: base.Add(offset),
		}
	}
	return []models.Report{
		mk("WS-2025-0003", "Residential Well Area", "[taste] Metallic taste", models.ReportStatusPending, models.ReportPriorityHigh, strPtr("25.1,89.5"), 3*time.Hour),
		mk("WS-2025-0002", "Industrial District River", "[pollution] Oil sheen", models.ReportStatusInvestigating, models.ReportPriorityCritical, strPtr("25.4,89.1"), 2*time.Hour),
		mk("WS-2025-0001", "Downtown Lake", "[discoloration] Brown water", models.ReportStatusResolved, models.ReportPriorityMedium, strPtr("25.2,89.3"), time.Hour),
		mk("WS-2025-0004", "Old Mill Creek", "[odor] Smell", models.ReportStatusPending, models.ReportPriorityLow, nil, 0),
	}
}

func TestFilterReports(t *testing.T) {
	reports := sampleReports()

	all := FilterReports(reports, models.ReportFilter{})
	assert.Len(t, all, 4)

	bySearch := FilterReports(reports, models.ReportFilter{Search: "RIVER"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, "WS-2025-0002", bySearch[0].ReportCode)

	byCode := FilterReports(reports, models.ReportFilter{Search: "ws-2025-0001"})
	require.Len(t, byCode, 1)

	byDescription := FilterReports(reports, models.ReportFilter{Search: "metallic"})
	require.Len(t, byDescription, 1)

	pending := FilterReports(reports, models.ReportFilter{Status: statusPtr(models.ReportStatusPending)})
	assert.Len(t, pending, 2)
	assert.Equal(t, "WS-2025-0003", pending[0].ReportCode, "order is preserved")

	conj := FilterReports(reports, models.ReportFilter{
		Search:   "a",
		Status:   statusPtr(models.ReportStatusPending),
		Priority: priorityPtr(models.ReportPriorityHigh),
	})
	require.Len(t, conj, 1)
	assert.Equal(t, "WS-2025-0003", conj[0].ReportCode)

	none := FilterReports(nil, models.ReportFilter{Search: "x"})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleReports())

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Investigating)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.ByPriority[models.ReportPriorityCritical])
	assert.Equal(t, 1, stats.ByPriority[models.ReportPriorityLow])

	empty := ComputeStats(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Len(t, empty.ByPriority, 4, "every priority is present even when zero")
}

func TestBuildMapPoints(t *testing.T) {
	points := BuildMapPoints(sampleReports())
	require.Len(t, points, 3, "reports without coordinates are skipped")

	byCode := make(map[string]models.MapPoint)
	for _, p := range points {
		byCode[p.ReportCode] = p
	}

	critical := byCode["WS-2025-0002"]
	assert.Equal(t, 5.0, critical.Weight)
	assert.Equal(t, "#dc2626", critical.Color)
	assert.InDelta(t, 25.4, critical.Lat, 1e-9)
	assert.InDelta(t, 89.1, critical.Lng, 1e-9)

	resolvedMedium := byCode["WS-2025-0001"]
	assert.Equal(t, 1.0, resolvedMedium.Weight, "resolved reports weigh half")
	assert.Equal(t, "#eab308", resolvedMedium.Color)

	assert.Equal(t, 3.0, byCode["WS-2025-0003"].Weight)
}

func TestQueryService_StatsFollowMutations(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	stats, err := env.query.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)

	created, err := env.service.Create(ctx, anonymousCriticalRequest())
	require.NoError(t, err)
	_, err = env.service.Create(ctx, anonymousCriticalRequest())
	require.NoError(t, err)

	_, err = env.service.Update(ctx, created.Report.ID, models.ReportUpdate{Status: statusPtr(models.ReportStatusResolved)})
	require.NoError(t, err)

	stats, err = env.query.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 2, stats.ByPriority[models.ReportPriorityCritical])

	require.NoError(t, env.service.Delete(ctx, created.Report.ID))
	stats, err = env.query.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Resolved)
}

func TestQueryService_FilterAndMap(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req := anonymousCriticalRequest()
	req.Location = "Industrial District River"
	req.Coordinates = strPtr("25.4N, 89.1E")
	_, err := env.service.Create(ctx, req)
	require.NoError(t, err)

	req = anonymousCriticalRequest()
	req.Location = "Downtown Lake"
	req.Priority = "low"
	_, err = env.service.Create(ctx, req)
	require.NoError(t, err)

	found, err := env.query.Filter(ctx, models.ReportFilter{Search: "river"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	points, err := env.query.MapPoints(ctx, models.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Industrial District River", found[0].Location)
}

func TestQueryService_StorageError(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("List", mock.Anything).Return(nil, errors.New("disk on fire"))

	_, err := NewQueryService(repo).Stats(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPStatus)
	assert.NotContains(t, appErr.Message, "disk on fire")
}
