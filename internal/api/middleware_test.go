package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimitLowRPMStillAdmitsRequests(t *testing.T) {
	m := NewMiddleware(zap.NewNop().Sugar(), &MockMetrics{})

	// An rpm below 6 used to truncate the burst to zero and reject
	// every request.
	for _, rpm := range []int{1, 5} {
		handler := m.RateLimit(rpm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "rpm=%d", rpm)
	}
}

func TestRateLimitRejectsWhenBurstExhausted(t *testing.T) {
	m := NewMiddleware(zap.NewNop().Sugar(), &MockMetrics{})

	handler := m.RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
