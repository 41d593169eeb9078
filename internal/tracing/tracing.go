// Package tracing настраивает OpenTelemetry: OTLP/gRPC экспорт спанов HTTP запросов.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

// ServiceName - имя сервиса в трейсах.
const ServiceName = "watersafe-hub"

// ShutdownFunc сбрасывает накопленные спаны и закрывает экспортёр.
type ShutdownFunc func(context.Context) error

// Init включает экспорт трейсов на endpoint. Пустой endpoint означает, что трейсинг выключен:
// otelgin продолжит работать с no-op провайдером.
func Init(ctx context.Context, endpoint, env string) (ShutdownFunc, error) {
	if endpoint == "" {
		logger.Log.Debug("tracing: OTEL_EXPORTER_OTLP_ENDPOINT не задан, трейсинг выключен")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: не удалось создать OTLP экспортёр: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("deployment.environment", env),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Log.WithField("endpoint", endpoint).Info("tracing: экспорт трейсов включён")
	return tp.Shutdown, nil
}
