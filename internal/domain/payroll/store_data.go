package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is the PostgreSQL record store.
type PgStore struct {
	DB    Querier
	order func(month string) int
	now   func() time.Time
}

func NewPgStore(db Querier, monthOrder func(month string) int) *PgStore {
	return &PgStore{DB: db, order: monthOrder, now: time.Now}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *PgStore) Get(ctx context.Context, employeeID, month string) (AbsenceRecord, error) {
	query, args, err := builder().Select(recordColumns...).From(tableSalaryRecords).
		Where(sq.Eq{"employee_id": employeeID, "month": month}).ToSql()
	if err != nil {
		return AbsenceRecord{}, err
	}
	rec, err := scanRecord(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return AbsenceRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return AbsenceRecord{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

func (s *PgStore) Upsert(ctx context.Context, rec AbsenceRecord) error {
	ordinal := 0
	if s.order != nil {
		ordinal = s.order(rec.Month)
	}
	query, args, err := builder().Insert(tableSalaryRecords).
		Columns(upsertColumns...).
		Values(recordValues(rec, ordinal, s.now().UTC())...).
		Suffix(`ON CONFLICT (employee_id, month) DO UPDATE SET
      full_name = EXCLUDED.full_name,
      gross_salary_base = EXCLUDED.gross_salary_base,
      seniority_rate = EXCLUDED.seniority_rate,
      years_experience = EXCLUDED.years_experience,
      days_vacation = EXCLUDED.days_vacation,
      days_sick = EXCLUDED.days_sick,
      days_absence = EXCLUDED.days_absence,
      days_unpaid = EXCLUDED.days_unpaid,
      sick_leave_count = EXCLUDED.sick_leave_count,
      updated_at = EXCLUDED.updated_at,
      month_ordinal = EXCLUDED.month_ordinal`).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *PgStore) Delete(ctx context.Context, employeeID, month string) error {
	query, args, err := builder().Delete(tableSalaryRecords).
		Where(sq.Eq{"employee_id": employeeID, "month": month}).ToSql()
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PgStore) ListAll(ctx context.Context) ([]AbsenceRecord, error) {
	return s.list(ctx, nil)
}

func (s *PgStore) ListByEmployee(ctx context.Context, employeeID string) ([]AbsenceRecord, error) {
	return s.list(ctx, sq.Eq{"employee_id": employeeID})
}

func (s *PgStore) list(ctx context.Context, where sq.Sqlizer) ([]AbsenceRecord, error) {
	qb := builder().Select(recordColumns...).From(tableSalaryRecords).OrderBy("employee_id", "month_ordinal")
	if where != nil {
		qb = qb.Where(where)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []AbsenceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
