package middleware

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"finance-tracker/internal/infrastructure/config"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
}

func newBufferLogger() (*otelinfra.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	tracer := noop.NewTracerProvider().Tracer("test")
	return otelinfra.NewLoggerWithWriter(tracer, buf, config.LogConfig{Level: "debug", Format: "json"}), buf
}

func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}
