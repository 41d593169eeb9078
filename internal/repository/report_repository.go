package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/repository/common"
)

// Выданные коды живут в report_codes и после удаления обращения, поэтому не переиспользуются.
const (
	reportCodeConstraint = "reports_report_code_key"
	issuedCodeConstraint = "report_codes_pkey"
)

const reportColumns = `id, report_code, location, coordinates, description, status, priority,
	submitted_by_name, submitted_by_email, anonymous, contact_for_updates,
	official_response, action_taken, submitted_at, resolved_at, updated_at`

// ReportRepository хранит обращения в PostgreSQL.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create резервирует код и вставляет обращение в одной транзакции.
// Конфликт кода возвращает ErrReportCodeTaken.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_codes (code, issued_at) VALUES ($1, $2)`,
			report.ReportCode, report.SubmittedAt,
		); err != nil {
			return err
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO reports (`+reportColumns+`)
			VALUES (:id, :report_code, :location, :coordinates, :description, :status, :priority,
				:submitted_by_name, :submitted_by_email, :anonymous, :contact_for_updates,
				:official_response, :action_taken, :submitted_at, :resolved_at, :updated_at)
		`, report)
		return err
	})
	if err != nil {
		if common.IsUniqueViolation(err, issuedCodeConstraint) || common.IsUniqueViolation(err, reportCodeConstraint) {
			return ErrReportCodeTaken
		}
		return fmt.Errorf("report repository: create %s: %w", report.ReportCode, err)
	}
	return nil
}

// GetByID возвращает обращение по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return common.GetOne[models.Report](ctx, r.db, reportByID, id, ErrReportNotFound)
}

// GetByCode возвращает обращение по публичному коду.
func (r *ReportRepository) GetByCode(ctx context.Context, code string) (*models.Report, error) {
	return common.GetOne[models.Report](ctx, r.db, reportByCode, code, ErrReportNotFound)
}

// List возвращает все обращения, новые первыми.
func (r *ReportRepository) List(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.SelectContext(ctx, &reports, `
		SELECT `+reportColumns+` FROM reports ORDER BY submitted_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("report repository: list %w", err)
	}
	return reports, nil
}

// Update блокирует строку, применяет mutate и сохраняет результат в той же транзакции.
func (r *ReportRepository) Update(ctx context.Context, id uuid.UUID, mutate ReportMutator) (*models.Report, error) {
	var updated *models.Report

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		report, err := common.GetOneForUpdate[models.Report](ctx, tx, reportByID, id, ErrReportNotFound)
		if err != nil {
			return err
		}

		if err := mutate(report); err != nil {
			return err
		}

		if _, err := tx.NamedExecContext(ctx, `
			UPDATE reports
			SET status = :status,
				priority = :priority,
				official_response = :official_response,
				action_taken = :action_taken,
				resolved_at = :resolved_at,
				updated_at = :updated_at
			WHERE id = :id
		`, report); err != nil {
			return fmt.Errorf("report repository: update %s: %w", id, err)
		}
		updated = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete удаляет обращение; запись в report_codes остаётся.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("report repository: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Ping проверяет доступность базы.
func (r *ReportRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
