package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/records?limit=500&offset=20", nil)
	p := ParsePagination(req, 50, 200)
	assert.Equal(t, Pagination{Limit: 200, Offset: 20}, p)

	req = httptest.NewRequest(http.MethodGet, "/records?limit=-1&offset=x", nil)
	assert.Equal(t, Pagination{Limit: 50, Offset: 0}, ParsePagination(req, 50, 200))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{2, 3}, Page(items, Pagination{Limit: 2, Offset: 1}))
	assert.Equal(t, []int{4, 5}, Page(items, Pagination{Limit: 10, Offset: 3}))
	assert.Equal(t, []int{}, Page(items, Pagination{Limit: 2, Offset: 9}))
}

type samplePayload struct {
	Month       string  `json:"month" validate:"required"`
	GrossSalary float64 `json:"grossSalary" validate:"gt=0"`
	Bracket     string  `json:"bracket" validate:"omitempty,oneof=before_cutoff from_cutoff"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Bracket: "ancient"})
	assert.Equal(t, []ValidationIssue{
		{Field: "bracket", Reason: "must be one of before_cutoff from_cutoff"},
		{Field: "grossSalary", Reason: "must be greater than 0"},
		{Field: "month", Reason: "is required"},
	}, v.Issues())

	v = NewValidator()
	v.Struct(samplePayload{Month: "Март", GrossSalary: 10})
	assert.False(t, v.HasIssues())
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("employeeId", " ", "is required")
	rec := httptest.NewRecorder()
	assert.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"validation_error"`)
	assert.Contains(t, rec.Body.String(), `"employeeId"`)
}
