package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checker bool

func (c checker) Degraded() bool {
	return bool(c)
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		degraded bool
		status   int
		body     string
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "degraded", degraded: true, status: http.StatusServiceUnavailable, body: `{"status":"degraded"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/healthz", nil)

			NewHandler(checker(tt.degraded)).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.JSONEq(t, tt.body, recorder.Body.String())
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	recorder := httptest.NewRecorder()

	NewHandler(checker(false)).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
