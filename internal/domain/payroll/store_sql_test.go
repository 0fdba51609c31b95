package payroll

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db, DefaultRuleSet().Calendar.Ordinal), mock
}

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows(recordColumns)
}

func TestSQLStoreGet(t *testing.T) {
	store, mock := newMockStore(t)
	updated := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT employee_id, .* FROM salary_records WHERE employee_id = \? AND month = \?`).
		WithArgs("E-1", "Март").
		WillReturnRows(recordRows().AddRow("E-1", "Иван Петров", "Март", 1800.0, 0.6, 4, 2, 3, 0, 1, 1, updated))

	rec, err := store.Get(context.Background(), "E-1", "Март")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", rec.FullName)
	assert.Equal(t, 1800.0, rec.GrossSalaryBase)
	assert.Equal(t, 4, rec.YearsExperience)
	assert.Equal(t, 3, rec.DaysSick)
	assert.Equal(t, 1, rec.DaysUnpaid)
	assert.Equal(t, updated, rec.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM salary_records`).
		WithArgs("E-1", "Март").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "E-1", "Март")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLStoreGetFailure(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("database is locked")
	mock.ExpectQuery(`SELECT .* FROM salary_records`).WillReturnError(boom)

	_, err := store.Get(context.Background(), "E-1", "Март")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLStoreUpsertStoresMonthOrdinal(t *testing.T) {
	store, mock := newMockStore(t)
	fixed := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	mock.ExpectExec(`INSERT OR REPLACE INTO salary_records \(employee_id,.*,updated_at,month_ordinal\) VALUES`).
		WithArgs("E-1", "", "Март", 1800.0, 0.0, 0, 0, 0, 0, 0, 1, fixed, 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Upsert(context.Background(), AbsenceRecord{EmployeeID: "E-1", Month: "Март", GrossSalaryBase: 1800, SickLeaveEpisodes: 1})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDelete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM salary_records WHERE employee_id = \? AND month = \?`).
		WithArgs("E-1", "Март").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM salary_records`).
		WithArgs("E-1", "Април").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Delete(context.Background(), "E-1", "Март"))
	assert.ErrorIs(t, store.Delete(context.Background(), "E-1", "Април"), ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreListByEmployeeOrdersByCalendar(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM salary_records WHERE employee_id = \? ORDER BY employee_id, month_ordinal`).
		WithArgs("E-1").
		WillReturnRows(recordRows().
			AddRow("E-1", "", "Февруари", 1500.0, 0.0, 0, 0, 0, 0, 0, 1, now).
			AddRow("E-1", "", "Октомври", 1600.0, 0.0, 0, 0, 0, 0, 0, 1, now))

	records, err := store.ListByEmployee(context.Background(), "E-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Февруари", records[0].Month)
	assert.Equal(t, "Октомври", records[1].Month)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreListAll(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM salary_records ORDER BY employee_id, month_ordinal`).
		WillReturnRows(recordRows())

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}
