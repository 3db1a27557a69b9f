package v0

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func attrOf(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestClientSpans(t *testing.T) {
	exporter := recordSpans(t)
	srv := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": map[string]string{"message": "boom"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "chat_1"})
	})
	client := NewClientWithConfig("test-key", srv.URL, time.Second)

	_, err := client.GetChat(context.Background(), "chat_1")
	require.NoError(t, err)
	_, err = client.DeleteChat(context.Background(), "chat_1")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "v0 get chat", ok.Name)
	assert.Equal(t, trace.SpanKindClient, ok.SpanKind)
	assert.Equal(t, codes.Unset, ok.Status.Code)
	method, _ := attrOf(ok.Attributes, "http.request.method")
	assert.Equal(t, "GET", method.AsString())
	path, _ := attrOf(ok.Attributes, "url.path")
	assert.Equal(t, "/chats/chat_1", path.AsString())
	status, _ := attrOf(ok.Attributes, "http.response.status_code")
	assert.Equal(t, int64(200), status.AsInt64())

	failed := spans[1]
	assert.Equal(t, "v0 delete chat", failed.Name)
	assert.Equal(t, codes.Error, failed.Status.Code)
	kind, found := attrOf(failed.Attributes, "v0.error.kind")
	require.True(t, found)
	assert.Equal(t, string(KindAPI), kind.AsString())
	require.NotEmpty(t, failed.Events, "error is recorded as a span event")
	assert.Equal(t, "exception", failed.Events[0].Name)
}

func TestClientSpans_MissingKey(t *testing.T) {
	exporter := recordSpans(t)
	client := NewClientWithConfig("", "http://127.0.0.1:1", time.Second)

	_, err := client.GetUser(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	_, hasStatus := attrOf(spans[0].Attributes, "http.response.status_code")
	assert.False(t, hasStatus)
}

func TestRemoteMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// 499 ASCII bytes then a 3 byte rune straddling the 500 byte cut
	body := strings.Repeat("x", 499) + "€" + strings.Repeat("y", 10)

	msg := remoteMessage(http.StatusBadGateway, []byte(body))

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("x", 499), msg)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "h", truncate("héllo", 2))
	assert.Equal(t, "hé", truncate("héllo", 3))
	assert.Equal(t, "", truncate("€", 2))
}
