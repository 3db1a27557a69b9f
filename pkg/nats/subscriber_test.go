package nats

import (
	"strconv"
	"testing"
	"time"

	"ai-appbuilder-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "app.CHAT_STATUS_CHANGED", Subject(events.ChatStatusChanged))
	assert.Equal(t, "app.>", Subject(">"))
}

func TestDecode(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	evt, err := decode("app.CHAT_STATUS_CHANGED", []byte(`{"chat_id":"c1","status":"completed","occurred_at":`+
		strconv.FormatInt(at.UnixMilli(), 10)+`}`))
	require.NoError(t, err)

	assert.Equal(t, events.ChatStatusChanged, evt.EventType())
	assert.Equal(t, "c1", evt.Payload()["chat_id"])
	assert.NotContains(t, evt.Payload(), "occurred_at")
	assert.True(t, at.Equal(evt.Timestamp()))
}

func TestDecode_InvalidPayload(t *testing.T) {
	_, err := decode("app.X", []byte("not json"))
	assert.Error(t, err)
}
