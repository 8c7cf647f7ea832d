package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/common/logger"
)

func newTestRouter(t *testing.T) *httprouter.Router {
	router := httprouter.New()
	newStubHandler(20000, logger.NewTestLogger(t)).RegisterRoutes(router, "/api/loan")
	return router
}

func TestStubHandler_Decide(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "approved individual",
			body:       `{"personType":"PF","cpf":"52998224725","cnpj":"","name":"Maria Souza","amountDue":0,"requestedValue":"15000"}`,
			wantStatus: http.StatusOK,
			wantMsg:    msgApproved,
		},
		{
			name:       "denied organization",
			body:       `{"personType":"PJ","cpf":"","cnpj":"11222333000181","name":"Padaria Estrela","amountDue":10,"requestedValue":"40000"}`,
			wantStatus: http.StatusOK,
			wantMsg:    msgDenied,
		},
		{
			name:       "approval limit is inclusive",
			body:       `{"personType":"PF","cpf":"52998224725","cnpj":"","name":"Maria Souza","amountDue":0,"requestedValue":"20000"}`,
			wantStatus: http.StatusOK,
			wantMsg:    msgApproved,
		},
		{
			name:       "bad checksum",
			body:       `{"personType":"PF","cpf":"52998224724","cnpj":"","name":"Maria Souza","amountDue":0,"requestedValue":"100"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing name",
			body:       `{"personType":"PF","cpf":"52998224725","cnpj":"","name":"","amountDue":0,"requestedValue":"100"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       `hello`,
			wantStatus: http.StatusBadRequest,
		},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/loan", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantMsg == "" {
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestStubHandler_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
