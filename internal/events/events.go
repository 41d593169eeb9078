package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/watersafe-backend/internal/models"
)

// Типы событий жизненного цикла обращения.
const (
	TypeReportCreated = "report.created"
	TypeReportUpdated = "report.updated"
	TypeReportDeleted = "report.deleted"
)

// ReportEvent - событие без персональных данных заявителя.
type ReportEvent struct {
	Type       string                `json:"type"`
	ReportID   uuid.UUID             `json:"reportId"`
	ReportCode string                `json:"reportCode"`
	Status     models.ReportStatus   `json:"status,omitempty"`
	Priority   models.ReportPriority `json:"priority,omitempty"`
	PrevStatus models.ReportStatus   `json:"previousStatus,omitempty"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// NewReportEvent собирает событие по текущему состоянию обращения.
func NewReportEvent(eventType string, report *models.Report, occurredAt time.Time) ReportEvent {
	return ReportEvent{
		Type:       eventType,
		ReportID:   report.ID,
		ReportCode: report.ReportCode,
		Status:     report.Status,
		Priority:   report.Priority,
		OccurredAt: occurredAt.UTC(),
	}
}

// Publisher доставляет события во внешнюю шину.
type Publisher interface {
	Publish(ctx context.Context, event ReportEvent) error
	Close() error
}

// NoopPublisher используется, когда брокер не настроен.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ReportEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }
