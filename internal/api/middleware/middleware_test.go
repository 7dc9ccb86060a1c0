package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskpad/internal/api/shared"
	"github.com/phrazzld/taskpad/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	base, buf := logger.NewCapture(slog.LevelDebug)

	var seenTraceID string
	handler := chimw.RequestID(Trace(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		log, ok := logger.FromContext(r.Context())
		require.True(t, ok, "trace middleware should store a logger")
		log.Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, seenTraceID, 32)
	assert.Equal(t, seenTraceID, rr.Header().Get(TraceHeader))

	entries := buf.EntriesWithMessage("inside handler")
	require.Len(t, entries, 1)
	assert.Equal(t, seenTraceID, entries[0]["trace_id"])
	assert.NotEmpty(t, entries[0]["request_id"])
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		wantAllowed string
	}{
		{name: "no origins configured", allowed: nil, origin: "http://evil.example", wantAllowed: ""},
		{name: "allowed origin", allowed: []string{"http://localhost:5173"}, origin: "http://localhost:5173", wantAllowed: "http://localhost:5173"},
		{name: "other origin", allowed: []string{"http://localhost:5173"}, origin: "http://evil.example", wantAllowed: ""},
		{name: "any origin", allowed: []string{"*"}, origin: "http://other.example", wantAllowed: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			CORS(tt.allowed)(ok).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
