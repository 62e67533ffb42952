package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

func serve(p Pinger, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(p, nil).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(&mockPinger{pingErr: errors.New("down")}, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of store", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	testCases := []struct {
		name   string
		pinger Pinger
		want   int
	}{
		{"nil pinger", nil, http.StatusOK},
		{"ping ok", &mockPinger{}, http.StatusOK},
		{"ping fails", &mockPinger{pingErr: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tc.pinger, "/readyz")
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
