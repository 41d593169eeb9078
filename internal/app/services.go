package app

import (
	"github.com/jonboulle/clockwork"

	"github.com/ignatzorin/watersafe-backend/internal/config"
	"github.com/ignatzorin/watersafe-backend/internal/events"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/observability"
	"github.com/ignatzorin/watersafe-backend/internal/service"
)

// Services - прикладной слой поверх хранилища.
type Services struct {
	Tokens  *service.TokenManager
	Auth    *service.AuthService
	Users   *service.UserService
	Reports *service.ReportService
	Queries *service.QueryService
	Seed    *service.SeedService

	Publisher events.Publisher
}

// NewPublisher выбирает Kafka, если заданы брокеры, иначе события отбрасываются.
func NewPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Log.Debug("app: KAFKA_BROKERS не заданы, события не публикуются")
		return events.NoopPublisher{}
	}
	logger.Log.WithField("topic", cfg.KafkaReportsTopic).Info("app: события публикуются в Kafka")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaReportsTopic)
}

// NewServices связывает сервисы. metrics может быть nil, тогда счётчики никуда не регистрируются.
func NewServices(cfg *config.Config, store *Storage, clock clockwork.Clock, metrics *observability.Metrics, publisher events.Publisher) *Services {
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, clock)
	users := service.NewUserService(store.Users)
	reports := service.NewReportService(service.ReportServiceConfig{
		Repo:        store.Reports,
		Clock:       clock,
		Metrics:     metrics,
		Publisher:   publisher,
		MaxAttempts: cfg.ReportCodeMaxAttempts,
	})

	return &Services{
		Tokens:    tokens,
		Auth:      service.NewAuthService(store.Users, tokens),
		Users:     users,
		Reports:   reports,
		Queries:   service.NewQueryService(store.Reports),
		Seed:      service.NewSeedService(reports, users),
		Publisher: publisher,
	}
}
