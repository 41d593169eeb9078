package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/seed"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// SeedResult - сколько записей создал сид.
type SeedResult struct {
	Users          int
	Reports        int
	ReportsSkipped bool
}

// SeedService заполняет хранилище демонстрационными данными.
// Обращения проходят обычный приём, поэтому получают настоящие коды и время.
type SeedService struct {
	reports *ReportService
	users   *UserService
}

// NewSeedService создаёт новый сервис для генерации данных.
func NewSeedService(reports *ReportService, users *UserService) *SeedService {
	return &SeedService{reports: reports, users: users}
}

// Seed загружает фикстуры. Пользователи обновляются всегда,
// обращения создаются только в пустом хранилище.
func (s *SeedService) Seed(ctx context.Context, fixtures *seed.Fixtures) (*SeedResult, error) {
	result := &SeedResult{}

	for _, u := range fixtures.Users {
		if _, err := s.users.Upsert(ctx, validation.UpsertUserRequest{Email: u.Email, Name: u.Name}); err != nil {
			return result, fmt.Errorf("seed service: пользователь %s: %w", u.Email, err)
		}
		result.Users++
	}

	existing, err := s.reports.List(ctx)
	if err != nil {
		return result, fmt.Errorf("seed service: failed to list reports: %w", err)
	}
	if len(existing) > 0 {
		result.ReportsSkipped = true
		logger.Log.WithField("existing", len(existing)).Info("seed service: обращения уже есть, пропускаем")
		return result, nil
	}

	for i, f := range fixtures.Reports {
		report, err := s.seedReport(ctx, f)
		if err != nil {
			return result, fmt.Errorf("seed service: обращение #%d (%s): %w", i+1, f.Location, err)
		}
		result.Reports++
		logger.Log.WithFields(logrus.Fields{
			"report_code": report.ReportCode,
			"status":      report.Status,
		}).Debug("seed service: обращение создано")
	}

	return result, nil
}

func (s *SeedService) seedReport(ctx context.Context, f seed.ReportFixture) (*models.Report, error) {
	anonymous := f.Anonymous
	created, err := s.reports.Create(ctx, validation.CreateReportRequest{
		Name:              f.Name,
		Email:             f.Email,
		Location:          f.Location,
		Coordinates:       f.Coordinates,
		IssueType:         f.IssueType,
		Priority:          f.Priority,
		Description:       f.Description,
		Anonymous:         &anonymous,
		ContactForUpdates: f.ContactForUpdates,
	})
	if err != nil {
		return nil, err
	}

	req := validation.UpdateReportRequest{}
	if f.Status != "" {
		status := f.Status
		req.Status = &status
	}
	if f.OfficialResponse != nil {
		req.OfficialResponse = models.SetString(*f.OfficialResponse)
	}
	if f.ActionTaken != nil {
		req.ActionTaken = models.SetString(*f.ActionTaken)
	}

	upd, err := validation.ValidateUpdateReport(req)
	if err != nil {
		return nil, err
	}
	return s.reports.Update(ctx, created.Report.ID, upd)
}
