package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const tableSalaryRecords = "salary_records"

var recordColumns = []string{
	"employee_id", "full_name", "month", "gross_salary_base", "seniority_rate", "years_experience",
	"days_vacation", "days_sick", "days_absence", "days_unpaid", "sick_leave_count", "updated_at",
}

var upsertColumns = append(append([]string{}, recordColumns...), "month_ordinal")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (AbsenceRecord, error) {
	var rec AbsenceRecord
	err := row.Scan(&rec.EmployeeID, &rec.FullName, &rec.Month, &rec.GrossSalaryBase, &rec.SeniorityRatePercent,
		&rec.YearsExperience, &rec.DaysVacation, &rec.DaysSick, &rec.DaysAbsence, &rec.DaysUnpaid,
		&rec.SickLeaveEpisodes, &rec.UpdatedAt)
	return rec, err
}

func recordValues(rec AbsenceRecord, ordinal int, updatedAt time.Time) []any {
	return []any{
		rec.EmployeeID, rec.FullName, rec.Month, rec.GrossSalaryBase, rec.SeniorityRatePercent, rec.YearsExperience,
		rec.DaysVacation, rec.DaysSick, rec.DaysAbsence, rec.DaysUnpaid, rec.SickLeaveEpisodes, updatedAt, ordinal,
	}
}

// SQLStore is the database/sql record store used with the embedded SQLite database.
type SQLStore struct {
	DB    *sql.DB
	order func(month string) int
	now   func() time.Time
}

func NewSQLStore(db *sql.DB, monthOrder func(month string) int) *SQLStore {
	return &SQLStore{DB: db, order: monthOrder, now: time.Now}
}

func (s *SQLStore) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (s *SQLStore) Get(ctx context.Context, employeeID, month string) (AbsenceRecord, error) {
	query, args, err := s.builder().Select(recordColumns...).From(tableSalaryRecords).
		Where(sq.Eq{"employee_id": employeeID, "month": month}).ToSql()
	if err != nil {
		return AbsenceRecord{}, err
	}
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return AbsenceRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return AbsenceRecord{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

func (s *SQLStore) Upsert(ctx context.Context, rec AbsenceRecord) error {
	ordinal := 0
	if s.order != nil {
		ordinal = s.order(rec.Month)
	}
	query, args, err := s.builder().Insert(tableSalaryRecords).Options("OR REPLACE").
		Columns(upsertColumns...).
		Values(recordValues(rec, ordinal, s.now().UTC())...).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, employeeID, month string) error {
	query, args, err := s.builder().Delete(tableSalaryRecords).
		Where(sq.Eq{"employee_id": employeeID, "month": month}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]AbsenceRecord, error) {
	return s.list(ctx, nil)
}

func (s *SQLStore) ListByEmployee(ctx context.Context, employeeID string) ([]AbsenceRecord, error) {
	return s.list(ctx, sq.Eq{"employee_id": employeeID})
}

func (s *SQLStore) list(ctx context.Context, where sq.Sqlizer) ([]AbsenceRecord, error) {
	qb := s.builder().Select(recordColumns...).From(tableSalaryRecords).OrderBy("employee_id", "month_ordinal")
	if where != nil {
		qb = qb.Where(where)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
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
