package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportStatus - стадия разбора обращения.
type ReportStatus string

const (
	ReportStatusPending       ReportStatus = "PENDING"
	ReportStatusInvestigating ReportStatus = "INVESTIGATING"
	ReportStatusResolved      ReportStatus = "RESOLVED"
)

// ReportStatuses перечисляет статусы в порядке жизненного цикла.
var ReportStatuses = []ReportStatus{
	ReportStatusPending,
	ReportStatusInvestigating,
	ReportStatusResolved,
}

// IsValid проверяет, что статус входит в перечисление.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusInvestigating, ReportStatusResolved:
		return true
	}
	return false
}

// ParseReportStatus сопоставляет строку со статусом без учёта регистра.
func ParseReportStatus(v string) (ReportStatus, bool) {
	s := ReportStatus(strings.ToUpper(strings.TrimSpace(v)))
	return s, s.IsValid()
}

// ReportPriority - срочность обращения.
type ReportPriority string

const (
	ReportPriorityLow      ReportPriority = "LOW"
	ReportPriorityMedium   ReportPriority = "MEDIUM"
	ReportPriorityHigh     ReportPriority = "HIGH"
	ReportPriorityCritical ReportPriority = "CRITICAL"
)

// ReportPriorities перечисляет приоритеты по возрастанию.
var ReportPriorities = []ReportPriority{
	ReportPriorityLow,
	ReportPriorityMedium,
	ReportPriorityHigh,
	ReportPriorityCritical,
}

// IsValid проверяет, что приоритет входит в перечисление.
func (p ReportPriority) IsValid() bool {
	switch p {
	case ReportPriorityLow, ReportPriorityMedium, ReportPriorityHigh, ReportPriorityCritical:
		return true
	}
	return false
}

// ParseReportPriority сопоставляет строку с приоритетом без учёта регистра.
func ParseReportPriority(v string) (ReportPriority, bool) {
	p := ReportPriority(strings.ToUpper(strings.TrimSpace(v)))
	return p, p.IsValid()
}

// Report описывает обращение гражданина о качестве воды.
type Report struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	ReportCode        string         `db:"report_code" json:"reportCode"`
	Location          string         `db:"location" json:"location"`
	Coordinates       *string        `db:"coordinates" json:"coordinates"`
	Description       string         `db:"description" json:"description"`
	Status            ReportStatus   `db:"status" json:"status"`
	Priority          ReportPriority `db:"priority" json:"priority"`
	SubmittedByName   *string        `db:"submitted_by_name" json:"submittedByName"`
	SubmittedByEmail  *string        `db:"submitted_by_email" json:"submittedByEmail,omitempty"`
	Anonymous         bool           `db:"anonymous" json:"anonymous"`
	ContactForUpdates bool           `db:"contact_for_updates" json:"contactForUpdates"`
	OfficialResponse  *string        `db:"official_response" json:"officialResponse"`
	ActionTaken       *string        `db:"action_taken" json:"actionTaken"`
	SubmittedAt       time.Time      `db:"submitted_at" json:"submittedAt"`
	ResolvedAt        *time.Time     `db:"resolved_at" json:"resolvedAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`
}

// Redacted возвращает копию без контактного email, для публичной выдачи.
func (r Report) Redacted() Report {
	r.SubmittedByEmail = nil
	return r
}

// ReportStats - агрегаты по текущему набору обращений.
type ReportStats struct {
	Total         int                    `json:"total"`
	Pending       int                    `json:"pending"`
	Investigating int                    `json:"investigating"`
	Resolved      int                    `json:"resolved"`
	ByPriority    map[ReportPriority]int `json:"byPriority"`
}

// MapPoint - точка обращения для карты и тепловой карты.
type MapPoint struct {
	ReportID   uuid.UUID      `json:"id"`
	ReportCode string         `json:"reportCode"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Priority   ReportPriority `json:"priority"`
	Status     ReportStatus   `json:"status"`
	Weight     float64        `json:"weight"`
	Color      string         `json:"color"`
}
