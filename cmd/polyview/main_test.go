package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpsServer(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ready      error
		wantStatus int
		wantBody   string
	}{
		{"health", "/health", nil, http.StatusOK, `{"status":"healthy"}`},
		{"health ignores cache", "/health", errors.New("redis down"), http.StatusOK, `{"status":"healthy"}`},
		{"ready", "/ready", nil, http.StatusOK, `{"status":"ready"}`},
		{"not ready", "/ready", errors.New("redis down"), http.StatusServiceUnavailable, `{"status":"not ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpsServer(0, func(context.Context) error { return tt.ready })

			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestOpsServerExposesMetrics(t *testing.T) {
	srv := newOpsServer(0, func(context.Context) error { return nil })
	srv.Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "polyview_health_checks_total")
}
