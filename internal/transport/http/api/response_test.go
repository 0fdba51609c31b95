package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessWithMeta(rec, []string{"a"}, Meta{Total: 3, Limit: 1}, "req-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Success   bool     `json:"success"`
		Data      []string `json:"data"`
		Meta      Meta     `json:"meta"`
		RequestID string   `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, []string{"a"}, env.Data)
	assert.Equal(t, 3, env.Meta.Total)
	assert.Equal(t, "req-1", env.RequestID)
}

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "invalid", map[string]string{"month": "required"}, "req-2")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":false`)
	assert.Contains(t, body, `"code":"validation_error"`)
	assert.Contains(t, body, `"month":"required"`)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Month string `json:"month"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"Март","extra":1}`))
	assert.Error(t, Decode(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"Март"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "Март", dst.Month)
}
