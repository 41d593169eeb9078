package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ignatzorin/watersafe-backend/internal/app"
	"github.com/ignatzorin/watersafe-backend/internal/config"
	httpHandlers "github.com/ignatzorin/watersafe-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/watersafe-backend/internal/http/router"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/observability"
	"github.com/ignatzorin/watersafe-backend/internal/tracing"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("main: ошибка инициализации трейсинга: %v", err)
	}

	clock := clockwork.NewRealClock()

	// Хранилище и миграции.
	store, err := app.OpenStorage(ctx, cfg, clock, true)
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.WithError(err).Error("main: ошибка закрытия хранилища")
		}
	}()

	metrics := observability.NewMetrics()
	publisher := app.NewPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Log.WithError(err).Error("main: ошибка закрытия публикатора событий")
		}
	}()

	// Сервисы.
	services := app.NewServices(cfg, store, clock, metrics, publisher)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Health: httpHandlers.NewHealthHandler(services.Reports, clock),
		Report: httpHandlers.NewReportHandler(services.Reports, services.Queries),
		Auth:   httpHandlers.NewAuthHandler(services.Auth),
		User:   httpHandlers.NewUserHandler(services.Users),
	}, httpRouter.Options{
		Tokens:  services.Tokens,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalf("main: не удалось открыть порт %s: %v", cfg.HTTPPort, err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"port":    cfg.HTTPPort,
		"storage": cfg.StorageDriver,
	}).Info("main: HTTP сервер запущен")

	// Хранилище и публикатор закрываются отложенно, то есть уже после serve.
	if err := serve(ctx, server, ln, shutdownTimeout, shutdownTracing); err != nil {
		logger.Log.WithError(err).Error("main: сервер завершился с ошибкой")
	}
	logger.Log.Info("main: сервер остановлен")
}

const shutdownTimeout = 10 * time.Second

// serve обслуживает запросы до отмены ctx и возвращается только после того,
// как Shutdown дождался активных запросов и отработали хуки остановки.
func serve(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration, onShutdown ...func(context.Context) error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
	}
	for _, hook := range onShutdown {
		if err := hook(shutdownCtx); err != nil {
			logger.Log.WithError(err).Warn("main: ошибка при остановке")
		}
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
