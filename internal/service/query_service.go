package service

import (
	"context"
	"strings"

	"github.com/ignatzorin/watersafe-backend/internal/geo"
	"github.com/ignatzorin/watersafe-backend/internal/models"
)

// Вес точки на тепловой карте по приоритету; решённые обращения весят вдвое меньше.
var priorityWeights = map[models.ReportPriority]float64{
	models.ReportPriorityCritical: 5,
	models.ReportPriorityHigh:     3,
	models.ReportPriorityMedium:   2,
	models.ReportPriorityLow:      1,
}

var priorityColors = map[models.ReportPriority]string{
	models.ReportPriorityCritical: "#dc2626",
	models.ReportPriorityHigh:     "#f97316",
	models.ReportPriorityMedium:   "#eab308",
	models.ReportPriorityLow:      "#16a34a",
}

// QueryService отвечает на публичные запросы и ничего не изменяет.
type QueryService struct {
	repo ReportRepository
}

// NewQueryService создаёт сервис запросов.
func NewQueryService(repo ReportRepository) *QueryService {
	return &QueryService{repo: repo}
}

// Filter возвращает обращения, удовлетворяющие всем заданным условиям, новые первыми.
func (s *QueryService) Filter(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapStorageError(err, "report.filter", "")
	}
	return FilterReports(reports, filter), nil
}

// FilterReports применяет фильтр к готовому списку, сохраняя порядок.
func FilterReports(reports []models.Report, filter models.ReportFilter) []models.Report {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && r.Priority != *filter.Priority {
			continue
		}
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r models.Report, needle string) bool {
	return strings.Contains(strings.ToLower(r.Location), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(strings.ToLower(r.ReportCode), needle)
}

// Stats считает агрегаты по свежему снимку хранилища.
func (s *QueryService) Stats(ctx context.Context) (*models.ReportStats, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapStorageError(err, "report.stats", "")
	}
	return ComputeStats(reports), nil
}

// ComputeStats считает агрегаты по списку обращений.
func ComputeStats(reports []models.Report) *models.ReportStats {
	stats := &models.ReportStats{
		Total:      len(reports),
		ByPriority: make(map[models.ReportPriority]int, len(models.ReportPriorities)),
	}
	for _, p := range models.ReportPriorities {
		stats.ByPriority[p] = 0
	}

	for _, r := range reports {
		switch r.Status {
		case models.ReportStatusPending:
			stats.Pending++
		case models.ReportStatusInvestigating:
			stats.Investigating++
		case models.ReportStatusResolved:
			stats.Resolved++
		}
		stats.ByPriority[r.Priority]++
	}
	return stats
}

// MapPoints строит точки карты; обращения без координат пропускаются.
func (s *QueryService) MapPoints(ctx context.Context, filter models.ReportFilter) ([]models.MapPoint, error) {
	reports, err := s.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return BuildMapPoints(reports), nil
}

// BuildMapPoints переводит обращения в точки карты.
func BuildMapPoints(reports []models.Report) []models.MapPoint {
	points := make([]models.MapPoint, 0, len(reports))
	for _, r := range reports {
		if r.Coordinates == nil {
			continue
		}
		p, ok := geo.Parse(*r.Coordinates)
		if !ok {
			continue
		}

		weight := priorityWeights[r.Priority]
		if r.Status == models.ReportStatusResolved {
			weight /= 2
		}

		points = append(points, models.MapPoint{
			ReportID:   r.ID,
			ReportCode: r.ReportCode,
			Lat:        p.Lat,
			Lng:        p.Lng,
			Priority:   r.Priority,
			Status:     r.Status,
			Weight:     weight,
			Color:      priorityColors[r.Priority],
		})
	}
	return points
}
