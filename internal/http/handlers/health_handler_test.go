package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/watersafe-backend/internal/http/middleware"
	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	handler := NewHealthHandler(stubPinger{err: errors.New("down")}, clock)

	r := gin.New()
	r.GET("/health", handler.Health)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "liveness does not depend on storage")
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "watersafe-hub", body.Service)
	assert.True(t, body.Timestamp.Equal(clock.Now()))
}

func TestHealthHandler_Ready(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Discard()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"storage up", nil, http.StatusOK},
		{"storage down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/ready", NewHealthHandler(stubPinger{err: tc.err}, nil).Ready)

			req, _ := http.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestReportHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Discard()
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	handler := &ReportHandler{reports: nil}
	r.GET("/reports/:id", handler.Get)

	req, _ := http.NewRequest(http.MethodGet, "/reports/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
