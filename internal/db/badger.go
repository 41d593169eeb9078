package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/watersafe-backend/internal/goroutine"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

// BadgerConfig описывает параметры встроенного хранилища.
type BadgerConfig struct {
	Path           string
	InMemory       bool
	SyncWrites     bool
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultBadgerConfig возвращает настройки для файлового хранилища.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryBadgerConfig используется в тестах.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger перенаправляет внутренние сообщения badger в logrus.
type badgerLogger struct {
	entry *logrus.Entry
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.entry.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.entry.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.entry.Tracef(format, args...) }

// NewBadger открывает хранилище badger.
func NewBadger(cfg BadgerConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger: путь к хранилищу не задан")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: не удалось создать каталог %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).
			WithLogger(&badgerLogger{entry: logger.Log.WithField("component", "badger")})
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	conn, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: не удалось открыть хранилище: %w", err)
	}
	return conn, nil
}

// RunBadgerGC периодически чистит value log, пока не отменён контекст.
func RunBadgerGC(ctx context.Context, conn *badger.DB, cfg BadgerConfig) {
	if cfg.InMemory || cfg.GCInterval <= 0 {
		return
	}

	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(cfg.GCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := conn.RunValueLogGC(cfg.GCDiscardRatio)
				if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
					logger.Log.WithError(err).Warn("badger: ошибка сборки мусора")
				}
			}
		}
	})
}
