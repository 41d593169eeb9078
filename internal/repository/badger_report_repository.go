package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/ignatzorin/watersafe-backend/internal/models"
)

// Схема ключей:
//
//	report/<id>          -> JSON обращения
//	report_code/<code>   -> id; ключ не удаляется вместе с обращением
var (
	reportPrefix     = []byte("report/")
	reportCodePrefix = []byte("report_code/")
)

// maxTxnRetries ограничивает повторы транзакции при badger.ErrConflict.
const maxTxnRetries = 5

func reportKey(id uuid.UUID) []byte {
	return append(append([]byte{}, reportPrefix...), id.String()...)
}

func reportCodeKey(code string) []byte {
	return append(append([]byte{}, reportCodePrefix...), code...)
}

// BadgerReportRepository хранит обращения во встроенном badger.
type BadgerReportRepository struct {
	db *badger.DB
}

// NewBadgerReportRepository создаёт экземпляр репозитория.
func NewBadgerReportRepository(db *badger.DB) *BadgerReportRepository {
	return &BadgerReportRepository{db: db}
}

// Create проверяет и занимает код в той же транзакции, что и запись обращения.
func (r *BadgerReportRepository) Create(_ context.Context, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("badger report repository: encode %s: %w", report.ReportCode, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		codeKey := reportCodeKey(report.ReportCode)
		if _, err := txn.Get(codeKey); err == nil {
			return ErrReportCodeTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(codeKey, []byte(report.ID.String())); err != nil {
			return err
		}
		return txn.Set(reportKey(report.ID), data)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrReportCodeTaken), errors.Is(err, badger.ErrConflict):
		// ErrConflict: параллельная транзакция заняла тот же код раньше нас
		return ErrReportCodeTaken
	default:
		return fmt.Errorf("badger report repository: create %s: %w", report.ReportCode, err)
	}
}

// GetByID возвращает обращение по идентификатору.
func (r *BadgerReportRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	var report *models.Report
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		report, err = getReport(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapBadger("get", id.String(), err)
	}
	return report, nil
}

// GetByCode ищет обращение через индекс кодов.
func (r *BadgerReportRepository) GetByCode(_ context.Context, code string) (*models.Report, error) {
	var report *models.Report
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reportCodeKey(code))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}

		var id uuid.UUID
		if err := item.Value(func(val []byte) error {
			id, err = uuid.ParseBytes(val)
			return err
		}); err != nil {
			return err
		}

		report, err = getReport(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapBadger("get by code", code, err)
	}
	return report, nil
}

// List возвращает все обращения, новые первыми.
func (r *BadgerReportRepository) List(_ context.Context) ([]models.Report, error) {
	reports := []models.Report{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = reportPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var report models.Report
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &report)
			}); err != nil {
				return err
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, wrapBadger("list", "", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].SubmittedAt.Equal(reports[j].SubmittedAt) {
			return reports[i].SubmittedAt.After(reports[j].SubmittedAt)
		}
		return bytes.Compare(reports[i].ID[:], reports[j].ID[:]) < 0
	})
	return reports, nil
}

// Update читает, изменяет и записывает обращение в одной read-write транзакции.
// При конфликте с параллельной записью транзакция повторяется с новым снимком.
func (r *BadgerReportRepository) Update(_ context.Context, id uuid.UUID, mutate ReportMutator) (*models.Report, error) {
	var (
		updated   *models.Report
		mutateErr error
		err       error
	)
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			report, err := getReport(txn, id)
			if err != nil {
				return err
			}
			if mutateErr = mutate(report); mutateErr != nil {
				return mutateErr
			}
			data, err := json.Marshal(report)
			if err != nil {
				return err
			}
			updated = report
			return txn.Set(reportKey(id), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if mutateErr != nil {
		return nil, mutateErr
	}
	if err != nil {
		return nil, wrapBadger("update", id.String(), err)
	}
	return updated, nil
}

// Delete удаляет обращение; ключ кода остаётся занятым.
func (r *BadgerReportRepository) Delete(_ context.Context, id uuid.UUID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(reportKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		return txn.Delete(reportKey(id))
	})
	if err != nil {
		return wrapBadger("delete", id.String(), err)
	}
	return nil
}

// Ping проверяет, что хранилище открыто.
func (r *BadgerReportRepository) Ping(_ context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger: хранилище закрыто")
	}
	return nil
}

func getReport(txn *badger.Txn, id uuid.UUID) (*models.Report, error) {
	item, err := txn.Get(reportKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	var report models.Report
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &report)
	}); err != nil {
		return nil, err
	}
	return &report, nil
}

// wrapBadger пропускает доменные ошибки как есть и добавляет контекст к остальным.
func wrapBadger(op, key string, err error) error {
	if errors.Is(err, ErrReportNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrReportCodeTaken) {
		return err
	}
	return fmt.Errorf("badger repository: %s %s: %w", op, key, err)
}
