package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NimbusChat/service/registry"
)

func TestTracerEmit(t *testing.T) {
	conn := newFakeConn()
	backend := registry.Backend{ID: "java", Label: "Java", Transport: "tcp", Host: "localhost", Port: 8000}

	tr := NewTracer(conn, backend)
	tr.Emit(TraceSend, "tcp", map[string]string{"arg": "LISTROOMS"})

	events := conn.traces()
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "java", ev.Backend)
	assert.Equal(t, "tcp", ev.Transport)
	assert.Equal(t, TraceSend, ev.Direction)
	assert.Equal(t, "tcp", ev.Protocol)

	ts, err := time.Parse(time.RFC3339Nano, ev.TS)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, 5*time.Second)

	payload, ok := ev.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "LISTROOMS", payload["arg"])
}

func TestTracerNilSafe(t *testing.T) {
	var tr *Tracer
	assert.NotPanics(t, func() { tr.Emit(TraceMeta, "session", nil) })
	assert.NotPanics(t, func() { NewTracer(nil, registry.Backend{}).Emit(TraceMeta, "session", nil) })
}

func TestTracerDropsOnClosedConn(t *testing.T) {
	conn := newFakeConn()
	tr := NewTracer(conn, registry.Backend{ID: "java", Transport: "tcp"})

	conn.Close()
	assert.NotPanics(t, func() { tr.Emit(TraceRecv, "tcp", "line") })
	assert.Empty(t, conn.traces())
}
