// Package app собирает зависимости, общие для HTTP сервера и утилиты watersafectl.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/ignatzorin/watersafe-backend/internal/config"
	"github.com/ignatzorin/watersafe-backend/internal/db"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/repository"
	"github.com/ignatzorin/watersafe-backend/internal/service"
)

// Storage - открытое хранилище с репозиториями поверх него.
type Storage struct {
	Reports service.ReportRepository
	Users   service.UserRepository

	closeFn func() error
}

// Close освобождает соединения.
func (s *Storage) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// OpenStorage подключает выбранный в конфигурации драйвер.
// Для postgres при migrate=true применяются миграции.
func OpenStorage(ctx context.Context, cfg *config.Config, clock clockwork.Clock, migrate bool) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: ошибка подключения к базе: %w", err)
		}
		if migrate {
			if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("app: ошибка миграций: %w", err)
			}
		}
		return postgresStorage(conn), nil

	case config.StorageDriverBadger:
		badgerCfg := db.DefaultBadgerConfig(cfg.BadgerPath)
		conn, err := db.NewBadger(badgerCfg)
		if err != nil {
			return nil, fmt.Errorf("app: ошибка открытия badger: %w", err)
		}
		db.RunBadgerGC(ctx, conn, badgerCfg)
		logger.Log.WithField("path", cfg.BadgerPath).Info("app: используется встроенное хранилище badger")
		return &Storage{
			Reports: repository.NewBadgerReportRepository(conn),
			Users:   repository.NewBadgerUserRepository(conn, clock),
			closeFn: conn.Close,
		}, nil

	default:
		return nil, fmt.Errorf("app: неизвестный драйвер хранилища %q", cfg.StorageDriver)
	}
}

func postgresStorage(conn *sqlx.DB) *Storage {
	return &Storage{
		Reports: repository.NewReportRepository(conn),
		Users:   repository.NewUserRepository(conn),
		closeFn: conn.Close,
	}
}

// Migrate применяет миграции. Для badger схемы нет, команда ничего не делает.
func Migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		logger.Log.WithField("driver", cfg.StorageDriver).Info("app: миграции не требуются")
		return nil
	}
	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("app: ошибка подключения к базе: %w", err)
	}
	defer conn.Close()
	return db.RunMigrations(ctx, conn, cfg.MigrationsPath)
}
