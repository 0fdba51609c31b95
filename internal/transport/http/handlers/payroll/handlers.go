package payrollhandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/audit"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/auth"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/calendar"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/payroll"
	"github.com/Boyan92/SalaryCalculatorNew/internal/platform/metrics"
	"github.com/Boyan92/SalaryCalculatorNew/internal/requestctx"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/api"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/middleware"
	"github.com/Boyan92/SalaryCalculatorNew/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Archive *payroll.PayslipArchive
	Metrics *metrics.Collector
	Audit   *audit.Logger
}

func NewHandler(service *payroll.Service, archive *payroll.PayslipArchive, collector *metrics.Collector, auditLog *audit.Logger) *Handler {
	return &Handler{Service: service, Archive: archive, Metrics: collector, Audit: auditLog}
}

type calculateRequest struct {
	EmployeeID              string  `json:"employeeId" validate:"max=64"`
	FullName                string  `json:"fullName" validate:"max=200"`
	Month                   string  `json:"month" validate:"required"`
	GrossSalary             float64 `json:"grossSalary" validate:"gt=0"`
	WorkAccidentRatePercent float64 `json:"workAccidentRatePercent" validate:"gte=0"`
	Bracket                 string  `json:"bracket" validate:"omitempty,oneof=before_cutoff from_cutoff"`
	DaysVacation            int     `json:"daysVacation" validate:"gte=0"`
	DaysSick                int     `json:"daysSick" validate:"gte=0"`
	DaysAbsence             int     `json:"daysAbsence" validate:"gte=0"`
	DaysUnpaid              int     `json:"daysUnpaid" validate:"gte=0"`
	SickLeaveEpisodes       int     `json:"sickLeaveEpisodes" validate:"gte=0"`
	DisabilityExemption     bool    `json:"disabilityExemption"`
	YearsExperience         int     `json:"yearsExperience" validate:"gte=0,lte=70"`
	SeniorityRatePercent    float64 `json:"seniorityRatePercent" validate:"gte=0"`
}

func (p calculateRequest) input() payroll.Input {
	return payroll.Input{
		EmployeeID:              strings.TrimSpace(p.EmployeeID),
		Month:                   p.Month,
		GrossSalary:             p.GrossSalary,
		WorkAccidentRatePercent: p.WorkAccidentRatePercent,
		Bracket:                 payroll.BirthBracket(p.Bracket),
		DaysVacation:            p.DaysVacation,
		DaysSick:                p.DaysSick,
		DaysAbsence:             p.DaysAbsence,
		DaysUnpaid:              p.DaysUnpaid,
		SickLeaveEpisodes:       p.SickLeaveEpisodes,
		DisabilityExemption:     p.DisabilityExemption,
		YearsExperience:         p.YearsExperience,
		SeniorityRatePercent:    p.SeniorityRatePercent,
	}
}

type calendarResponse struct {
	Year             int              `json:"year"`
	Months           []calendar.Month `json:"months"`
	TotalWorkingDays int              `json:"totalWorkingDays"`
}

// RegisterRoutes mounts the payroll API. The calendar and rule set are public; everything
// that reads or produces employee pay data needs a viewer or operator token.
func (h *Handler) RegisterRoutes(r chi.Router) {
	readers := middleware.RequireRole(auth.RoleOperator, auth.RoleViewer)
	operators := middleware.RequireRole(auth.RoleOperator)

	r.Route("/payroll", func(r chi.Router) {
		r.With(readers).Post("/calculate", h.handleCalculate)
		r.With(readers).Post("/payslip", h.handlePayslip)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/rules", h.handleRules)
	})
	r.Route("/records", func(r chi.Router) {
		r.With(readers).Get("/", h.handleListRecords)
		r.With(readers).Get("/export", h.handleExportRecords)
		r.With(operators).Post("/import", h.handleImportRecords)
		r.With(readers).Get("/{employeeID}/{month}", h.handleGetRecord)
		r.With(operators).Put("/{employeeID}/{month}", h.handlePutRecord)
		r.With(operators).Delete("/{employeeID}/{month}", h.handleDeleteRecord)
	})
}

func (h *Handler) decodeCalculation(w http.ResponseWriter, r *http.Request) (calculateRequest, bool) {
	var payload calculateRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, false
	}
	return payload, true
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request, payload calculateRequest) (payroll.Breakdown, bool) {
	b, err := h.Service.Compute(r.Context(), payload.input())
	if h.Metrics != nil {
		h.Metrics.Calculation(err, err == nil && b.VacationBaseSource == payroll.LeaveBaseNone && b.DaysVacation > 0)
	}
	if err != nil {
		writeError(w, r, err)
		return payroll.Breakdown{}, false
	}
	return b.Rounded(), true
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeCalculation(w, r)
	if !ok {
		return
	}
	b, ok := h.compute(w, r, payload)
	if !ok {
		return
	}
	api.Success(w, b, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeCalculation(w, r)
	if !ok {
		return
	}
	b, ok := h.compute(w, r, payload)
	if !ok {
		return
	}

	var buf bytes.Buffer
	head := payroll.PayslipHeader{FullName: strings.TrimSpace(payload.FullName), EmployeeID: b.EmployeeID}
	if err := payroll.RenderPayslip(&buf, head, b); err != nil {
		slog.Error("payslip render failed", "err", err, "employeeId", b.EmployeeID, "month", b.Month)
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.PayslipRendered()
	}

	ordinal := h.Service.Rules().Calendar.Ordinal(b.Month)
	if h.Archive != nil && b.EmployeeID != "" {
		if _, err := h.Archive.Save(b, ordinal, buf.Bytes()); err != nil {
			slog.Warn("payslip archive failed", "err", err, "employeeId", b.EmployeeID, "month", b.Month)
		} else {
			w.Header().Set("X-Payslip-Archived", "true")
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payroll.PayslipFileName(b, ordinal)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	cal := h.Service.Rules().Calendar
	resp := calendarResponse{Year: cal.Year(), Months: cal.Months()}
	for _, m := range resp.Months {
		resp.TotalWorkingDays += m.WorkingDays
	}
	api.Success(w, resp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Rules(), middleware.GetRequestID(r.Context()))
}

// writeError maps domain errors onto the response envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "salary record not found", requestID)
	case errors.Is(err, payroll.ErrInvalidMonth):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_month", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidDayCounts):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_day_counts", err.Error(), requestID)
	case errors.Is(err, payroll.ErrUnknownBracket):
		api.Fail(w, http.StatusUnprocessableEntity, "unknown_bracket", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_input", err.Error(), requestID)
	default:
		slog.Error("payroll request failed", "err", err, "path", r.URL.Path, "method", r.Method)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, before, after any) {
	actor := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actor = user.Username
	}
	meta := requestctx.From(r.Context())
	h.Audit.Record(r.Context(), audit.Event{
		ActorID:    actor,
		Action:     action,
		EntityType: "salary_record",
		EntityID:   entityID,
		RequestID:  meta.RequestID,
		IP:         meta.ClientIP,
		Before:     before,
		After:      after,
	})
}

// pathParam returns a decoded route parameter; months arrive percent-encoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
