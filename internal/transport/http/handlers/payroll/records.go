package payrollhandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/audit"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/payroll"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/api"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/middleware"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/shared"
)

type recordPayload struct {
	FullName             string  `json:"fullName" validate:"max=200"`
	GrossSalaryBase      float64 `json:"grossSalaryBase" validate:"gt=0"`
	SeniorityRatePercent float64 `json:"seniorityRatePercent" validate:"gte=0"`
	YearsExperience      int     `json:"yearsExperience" validate:"gte=0,lte=70"`
	DaysVacation         int     `json:"daysVacation" validate:"gte=0"`
	DaysSick             int     `json:"daysSick" validate:"gte=0"`
	DaysAbsence          int     `json:"daysAbsence" validate:"gte=0"`
	DaysUnpaid           int     `json:"daysUnpaid" validate:"gte=0"`
	SickLeaveEpisodes    int     `json:"sickLeaveEpisodes" validate:"gte=0"`
}

// recordRow is the CSV shape used by export and import.
type recordRow struct {
	EmployeeID           string  `csv:"employee_id"`
	FullName             string  `csv:"full_name"`
	Month                string  `csv:"month"`
	GrossSalaryBase      float64 `csv:"gross_salary_base"`
	SeniorityRatePercent float64 `csv:"seniority_rate"`
	YearsExperience      int     `csv:"years_experience"`
	DaysVacation         int     `csv:"days_vacation"`
	DaysSick             int     `csv:"days_sick"`
	DaysAbsence          int     `csv:"days_absence"`
	DaysUnpaid           int     `csv:"days_unpaid"`
	SickLeaveEpisodes    int     `csv:"sick_leave_count"`
	UpdatedAt            string  `csv:"updated_at"`
}

func rowFromRecord(rec payroll.AbsenceRecord) *recordRow {
	updated := ""
	if !rec.UpdatedAt.IsZero() {
		updated = rec.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return &recordRow{
		EmployeeID:           rec.EmployeeID,
		FullName:             rec.FullName,
		Month:                rec.Month,
		GrossSalaryBase:      rec.GrossSalaryBase,
		SeniorityRatePercent: rec.SeniorityRatePercent,
		YearsExperience:      rec.YearsExperience,
		DaysVacation:         rec.DaysVacation,
		DaysSick:             rec.DaysSick,
		DaysAbsence:          rec.DaysAbsence,
		DaysUnpaid:           rec.DaysUnpaid,
		SickLeaveEpisodes:    rec.SickLeaveEpisodes,
		UpdatedAt:            updated,
	}
}

func (row recordRow) record() payroll.AbsenceRecord {
	return payroll.AbsenceRecord{
		EmployeeID:           row.EmployeeID,
		FullName:             row.FullName,
		Month:                row.Month,
		GrossSalaryBase:      row.GrossSalaryBase,
		SeniorityRatePercent: row.SeniorityRatePercent,
		YearsExperience:      row.YearsExperience,
		DaysVacation:         row.DaysVacation,
		DaysSick:             row.DaysSick,
		DaysAbsence:          row.DaysAbsence,
		DaysUnpaid:           row.DaysUnpaid,
		SickLeaveEpisodes:    row.SickLeaveEpisodes,
	}
}

type importFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type importResult struct {
	Imported int             `json:"imported"`
	Failed   []importFailure `json:"failed"`
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListRecords(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	api.SuccessWithMeta(w, shared.Page(records, page), api.Meta{
		Total:  len(records),
		Limit:  page.Limit,
		Offset: page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.GetRecord(r.Context(), pathParam(r, "employeeID"), pathParam(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	var payload recordPayload
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	employeeID, month := pathParam(r, "employeeID"), pathParam(r, "month")
	var before any
	if prev, err := h.Service.GetRecord(r.Context(), employeeID, month); err == nil {
		before = prev
	}
	rec, err := h.Service.SaveRecord(r.Context(), payroll.AbsenceRecord{
		EmployeeID:           employeeID,
		FullName:             payload.FullName,
		Month:                month,
		GrossSalaryBase:      payload.GrossSalaryBase,
		SeniorityRatePercent: payload.SeniorityRatePercent,
		YearsExperience:      payload.YearsExperience,
		DaysVacation:         payload.DaysVacation,
		DaysSick:             payload.DaysSick,
		DaysAbsence:          payload.DaysAbsence,
		DaysUnpaid:           payload.DaysUnpaid,
		SickLeaveEpisodes:    payload.SickLeaveEpisodes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.recordAudit(r, audit.ActionRecordUpsert, rec.EmployeeID+"/"+rec.Month, before, rec)
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	employeeID, month := pathParam(r, "employeeID"), pathParam(r, "month")
	prev, err := h.Service.GetRecord(r.Context(), employeeID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.DeleteRecord(r.Context(), employeeID, month); err != nil {
		writeError(w, r, err)
		return
	}
	h.recordAudit(r, audit.ActionRecordDelete, prev.EmployeeID+"/"+prev.Month, prev, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListRecords(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]*recordRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rowFromRecord(rec))
	}
	csvText, err := gocsv.MarshalString(&rows)
	if err != nil {
		slog.Error("records export failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export records", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"salary-records.csv\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csvText))
}

func (h *Handler) handleImportRecords(w http.ResponseWriter, r *http.Request) {
	var rows []*recordRow
	if err := gocsv.Unmarshal(r.Body, &rows); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_csv", "invalid CSV payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(rows) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_csv", "CSV payload has no rows", middleware.GetRequestID(r.Context()))
		return
	}

	records := make([]payroll.AbsenceRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.record()
		rec.EmployeeID = strings.TrimSpace(rec.EmployeeID)
		records = append(records, rec)
	}
	imported, failures := h.Service.ImportRecords(r.Context(), records)
	if h.Metrics != nil {
		h.Metrics.RecordsImported(imported)
	}

	result := importResult{Imported: imported, Failed: make([]importFailure, 0, len(failures))}
	for row, err := range failures {
		result.Failed = append(result.Failed, importFailure{Row: row, Reason: err.Error()})
	}
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Row < result.Failed[j].Row })
	h.recordAudit(r, audit.ActionRecordsImport, "", nil, map[string]int{"imported": imported, "failed": len(failures)})
	if len(failures) > 0 {
		slog.Warn("records import had failures", "imported", imported, "failed", len(failures))
	}

	status := http.StatusOK
	if imported == 0 {
		status = http.StatusUnprocessableEntity
	}
	api.WriteJSON(w, status, api.Envelope{
		Success:   imported > 0,
		Data:      result,
		RequestID: middleware.GetRequestID(r.Context()),
		Error:     importError(imported, len(failures)),
	})
}

func importError(imported, failed int) *api.Error {
	if imported > 0 {
		return nil
	}
	return &api.Error{Code: "import_failed", Message: fmt.Sprintf("none of %d rows could be imported", failed)}
}
