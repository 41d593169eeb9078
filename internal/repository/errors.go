package repository

import (
	"errors"

	"github.com/ignatzorin/watersafe-backend/internal/models"
)

var (
	// ErrReportNotFound возвращается, когда обращение не найдено.
	ErrReportNotFound = errors.New("report not found")
	// ErrReportCodeTaken - код обращения уже занят, нужно сгенерировать другой.
	ErrReportCodeTaken = errors.New("report code already taken")
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
)

// ReportMutator изменяет обращение внутри транзакции; ошибка откатывает изменения.
type ReportMutator func(report *models.Report) error
