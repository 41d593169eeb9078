package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/watersafe-backend/internal/config"
	"github.com/ignatzorin/watersafe-backend/internal/events"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/seed"
)

func badgerConfig(t *testing.T) *config.Config {
	return &config.Config{
		StorageDriver:         config.StorageDriverBadger,
		BadgerPath:            filepath.Join(t.TempDir(), "badger"),
		JWTSecret:             "app-test-secret",
		ReportCodeMaxAttempts: 5,
	}
}

func TestOpenStorage_BadgerAndSeed(t *testing.T) {
	logger.Discard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := badgerConfig(t)
	store, err := OpenStorage(ctx, cfg, clockwork.NewRealClock(), true)
	require.NoError(t, err)
	defer store.Close()

	publisher := NewPublisher(cfg)
	assert.IsType(t, events.NoopPublisher{}, publisher)

	svc := NewServices(cfg, store, clockwork.NewRealClock(), nil, publisher)
	fixtures, err := seed.Default()
	require.NoError(t, err)

	res, err := svc.Seed.Seed(ctx, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Reports)
	assert.NoError(t, svc.Reports.Ping(ctx))
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := badgerConfig(t)
	cfg.StorageDriver = "sqlite"

	_, err := OpenStorage(context.Background(), cfg, nil, false)
	assert.Error(t, err)
}

func TestMigrate_BadgerIsNoop(t *testing.T) {
	logger.Discard()
	assert.NoError(t, Migrate(context.Background(), badgerConfig(t)))
}

func TestNewPublisher_Kafka(t *testing.T) {
	cfg := badgerConfig(t)
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaReportsTopic = "watersafe.reports"

	publisher := NewPublisher(cfg)
	defer publisher.Close()
	assert.IsType(t, &events.KafkaPublisher{}, publisher)
}
