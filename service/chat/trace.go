package chat

import (
	"time"

	"NimbusChat/service/registry"
)

// Trace directions. "send" and "recv" mirror command/frame traffic; the rest
// mark lifecycle and error events.
const (
	TraceSend    = "send"
	TraceRecv    = "recv"
	TraceBackend = "backend"
	TraceGateway = "gateway"
	TraceMeta    = "meta"
)

// TraceEvent is one diagnostic record of a protocol translation. Never
// persisted; delivered best-effort on the owning session's connection.
type TraceEvent struct {
	TS        string      `json:"ts"`
	Backend   string      `json:"backend"`
	Transport string      `json:"transport"`
	Direction string      `json:"direction"`
	Protocol  string      `json:"protocol"`
	Payload   interface{} `json:"payload"`
}

// traceFrame tags the event so clients can split diagnostics from chat
// content on the shared connection.
type traceFrame struct {
	Trace TraceEvent `json:"__trace"`
}

// Tracer mirrors every hop of one session onto its client connection.
type Tracer struct {
	conn    Conn
	backend registry.Backend
}

func NewTracer(conn Conn, backend registry.Backend) *Tracer {
	return &Tracer{conn: conn, backend: backend}
}

// Emit wraps payload into a TraceEvent and enqueues it. If the connection is
// already closed the event is silently dropped; Emit never blocks and never
// fails the relay path.
func (t *Tracer) Emit(direction, protocol string, payload interface{}) {
	if t == nil || t.conn == nil {
		return
	}
	t.conn.SendJSON(traceFrame{Trace: TraceEvent{
		TS:        time.Now().UTC().Format(time.RFC3339Nano),
		Backend:   t.backend.ID,
		Transport: t.backend.Transport,
		Direction: direction,
		Protocol:  protocol,
		Payload:   payload,
	}})
}
