package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleStatus(t *testing.T) {
	h := New("prod")
	h.now = func() time.Time { return time.Date(2025, 1, 15, 9, 5, 3, 120_000_000, time.FixedZone("COT", -5*3600)) }
	h.RegisterCheck("db", func(context.Context) error { return errors.New("down") })

	w := serve(h, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"env":"prod","ts":"2025-01-15T14:05:03.120Z"}`, w.Body.String())
}

func TestHandleLiveness(t *testing.T) {
	w := serve(New("dev"), "/health/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestHandleReadiness(t *testing.T) {
	t.Run("no checks is ready", func(t *testing.T) {
		w := serve(New("dev"), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("failing check is not ready", func(t *testing.T) {
		h := New("dev")
		h.RegisterCheck("postgres", func(context.Context) error { return nil })
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		w := serve(h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "up", resp.Checks["postgres"])
		assert.Equal(t, "down: connection refused", resp.Checks["redis"])
	})
}
