package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(buf *bytes.Buffer) *Logger {
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{Logger: slog.New(handler)}
}

func TestRequestLogger_LogsStartAndCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	output := buf.String()
	assert.Contains(t, output, "request started")
	assert.Contains(t, output, "request completed")
	assert.Contains(t, output, "status=204")
	assert.Contains(t, output, "path=/health")
}

func TestRequestLogger_InjectsLoggerIntoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	var fromContext *Logger
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = GetLoggerFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req)

	require.NotNil(t, fromContext)
	fromContext.Info("from handler")
	assert.Contains(t, buf.String(), "from handler")
}
