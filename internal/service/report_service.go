package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/watersafe-backend/internal/events"
	"github.com/ignatzorin/watersafe-backend/internal/geo"
	"github.com/ignatzorin/watersafe-backend/internal/goroutine"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/observability"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/reportcode"
	"github.com/ignatzorin/watersafe-backend/internal/repository"
	"github.com/ignatzorin/watersafe-backend/internal/validation"
)

// DefaultCodeAttempts - сколько кодов пробуем, прежде чем сдаться.
const DefaultCodeAttempts = 5

const publishTimeout = 5 * time.Second

// ReportRepository описывает зависимости сервисов обращений от слоя хранилища.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	GetByCode(ctx context.Context, code string) (*models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
	Update(ctx context.Context, id uuid.UUID, mutate repository.ReportMutator) (*models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// CodeGenerator выпускает кандидатов в коды обращений.
type CodeGenerator interface {
	Generate() (string, error)
}

// CreateResult - созданное обращение и судьба присланных координат.
type CreateResult struct {
	Report      *models.Report
	Coordinates geo.Status
}

// ReportServiceConfig собирает зависимости ReportService.
type ReportServiceConfig struct {
	Repo        ReportRepository
	Generator   CodeGenerator
	Clock       clockwork.Clock
	Metrics     *observability.Metrics
	Publisher   events.Publisher
	MaxAttempts int
}

// ReportService управляет жизненным циклом обращений.
type ReportService struct {
	repo        ReportRepository
	generator   CodeGenerator
	clock       clockwork.Clock
	metrics     *observability.Metrics
	publisher   events.Publisher
	maxAttempts int
}

// NewReportService создаёт сервис; незаданные зависимости заменяются безопасными значениями.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	s := &ReportService{
		repo:        cfg.Repo,
		generator:   cfg.Generator,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		publisher:   cfg.Publisher,
		maxAttempts: cfg.MaxAttempts,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.generator == nil {
		s.generator = reportcode.NewGenerator(s.clock)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultCodeAttempts
	}
	return s
}

// now возвращает время с точностью до микросекунд, как его хранит PostgreSQL.
func (s *ReportService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// Create проверяет заявку, нормализует координаты и сохраняет обращение со статусом PENDING.
// Коллизия кода повторяется не более maxAttempts раз.
func (s *ReportService) Create(ctx context.Context, req validation.CreateReportRequest) (*CreateResult, error) {
	in, err := validation.ValidateCreateReport(req)
	if err != nil {
		return nil, err
	}

	coords := geo.NormalizePtr(in.RawCoordinates)
	s.metrics.CoordinatesProcessed.WithLabelValues(coords.Status.String()).Inc()

	now := s.now()
	report := &models.Report{
		ID:                uuid.New(),
		Location:          in.Location,
		Description:       fmt.Sprintf("[%s] %s", in.IssueType, in.Description),
		Status:            models.ReportStatusPending,
		Priority:          in.Priority,
		SubmittedByName:   in.Name,
		SubmittedByEmail:  in.Email,
		Anonymous:         in.Anonymous,
		ContactForUpdates: in.ContactForUpdates,
		Coordinates:       coords.Stored(),
		SubmittedAt:       now,
		UpdatedAt:         now,
	}

	log := logger.WithOp("report.create").WithField("report_id", report.ID)
	if coords.Status == geo.Invalid {
		log.WithField("coordinates", *in.RawCoordinates).Warn("report service: координаты не распознаны и отброшены")
	}

	if err := s.insertWithUniqueCode(ctx, report, log); err != nil {
		return nil, err
	}

	s.metrics.ReportsCreated.WithLabelValues(string(report.Priority)).Inc()
	log.WithFields(logrus.Fields{
		"report_code": report.ReportCode,
		"priority":    report.Priority,
	}).Info("report service: обращение зарегистрировано")

	s.publish(events.NewReportEvent(events.TypeReportCreated, report, now))

	return &CreateResult{Report: report, Coordinates: coords.Status}, nil
}

func (s *ReportService) insertWithUniqueCode(ctx context.Context, report *models.Report, log *logrus.Entry) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to generate report code")
		}
		report.ReportCode = code

		err = s.repo.Create(ctx, report)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrReportCodeTaken) {
			log.WithError(err).Error("report service: не удалось сохранить обращение")
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Failed to save report")
		}

		s.metrics.CodeCollisions.Inc()
		log.WithFields(logrus.Fields{"report_code": code, "attempt": attempt}).Warn("report service: код уже занят")
	}

	s.metrics.CodeExhausted.Inc()
	report.ReportCode = ""
	log.WithField("attempts", s.maxAttempts).Error("report service: исчерпаны попытки выдать код")
	return apperror.ErrCodeGenerationExhausted
}

// Get возвращает обращение по идентификатору.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStorageError(err, "report.get", id.String())
	}
	return report, nil
}

// GetByCode ищет обращение по публичному коду без учёта регистра.
func (s *ReportService) GetByCode(ctx context.Context, code string) (*models.Report, error) {
	canonical := reportcode.Canonical(code)
	if !reportcode.Valid(canonical) {
		return nil, apperror.ErrReportNotFound
	}
	report, err := s.repo.GetByCode(ctx, canonical)
	if err != nil {
		return nil, mapStorageError(err, "report.get_by_code", canonical)
	}
	return report, nil
}

// List возвращает все обращения, новые первыми.
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapStorageError(err, "report.list", "")
	}
	return reports, nil
}

// Update применяет частичное изменение. Первый переход в RESOLVED фиксирует resolvedAt;
// повторное открытие и повторное решение его не трогают.
func (s *ReportService) Update(ctx context.Context, id uuid.UUID, upd models.ReportUpdate) (*models.Report, error) {
	if upd.IsEmpty() {
		return s.Get(ctx, id)
	}

	now := s.now()
	var prevStatus models.ReportStatus

	report, err := s.repo.Update(ctx, id, func(r *models.Report) error {
		prevStatus = r.Status
		applyUpdate(r, upd, now)
		return nil
	})
	if err != nil {
		return nil, mapStorageError(err, "report.update", id.String())
	}

	log := logger.WithOp("report.update").WithFields(logrus.Fields{
		"report_id":   report.ID,
		"report_code": report.ReportCode,
	})
	if prevStatus != report.Status {
		s.metrics.StatusTransitions.WithLabelValues(string(prevStatus), string(report.Status)).Inc()
		log = log.WithFields(logrus.Fields{"from": prevStatus, "to": report.Status})
	}
	log.Info("report service: обращение обновлено")

	event := events.NewReportEvent(events.TypeReportUpdated, report, now)
	event.PrevStatus = prevStatus
	s.publish(event)

	return report, nil
}

func applyUpdate(r *models.Report, upd models.ReportUpdate, now time.Time) {
	if upd.Status != nil {
		r.Status = *upd.Status
		if r.Status == models.ReportStatusResolved && r.ResolvedAt == nil {
			resolvedAt := now
			r.ResolvedAt = &resolvedAt
		}
	}
	if upd.Priority != nil {
		r.Priority = *upd.Priority
	}
	if upd.OfficialResponse.Set {
		r.OfficialResponse = upd.OfficialResponse.Value
	}
	if upd.ActionTaken.Set {
		r.ActionTaken = upd.ActionTaken.Value
	}
	r.UpdatedAt = now
}

// Delete удаляет обращение.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapStorageError(err, "report.delete", id.String())
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStorageError(err, "report.delete", id.String())
	}

	s.metrics.ReportsDeleted.Inc()
	logger.WithOp("report.delete").WithFields(logrus.Fields{
		"report_id":   id,
		"report_code": report.ReportCode,
	}).Info("report service: обращение удалено")

	s.publish(events.NewReportEvent(events.TypeReportDeleted, report, s.now()))
	return nil
}

// Ping проверяет доступность хранилища.
func (s *ReportService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish отправляет событие после коммита и не влияет на результат запроса.
func (s *ReportService) publish(event events.ReportEvent) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, event); err != nil {
			s.metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
			logger.WithOp("report.publish").WithError(err).WithFields(logrus.Fields{
				"report_id":  event.ReportID,
				"event_type": event.Type,
			}).Warn("report service: не удалось опубликовать событие")
			return
		}
		s.metrics.EventsPublished.WithLabelValues(event.Type, "success").Inc()
	})
}

func mapStorageError(err error, op, key string) error {
	if errors.Is(err, repository.ErrReportNotFound) {
		return apperror.ErrReportNotFound
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	logger.WithOp(op).WithError(err).WithField("key", key).Error("report service: ошибка хранилища")
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "Storage error")
}
