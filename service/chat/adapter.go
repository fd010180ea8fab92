package chat

import "github.com/pkg/errors"

// ErrBackendDown marks a connection-fatal adapter failure. The owning session
// tears down on it; every other adapter error is a per-call failure reported
// inline to the client.
var ErrBackendDown = errors.New("backend connection lost")

// Sink receives everything an adapter produces for its owning session:
// relayed frames, synthesized notices, trace mirrors, and the fatal
// backend-closed signal. A Session is the only implementation outside tests.
type Sink interface {
	// DeliverRaw relays one opaque backend line verbatim to the client.
	DeliverRaw(line []byte)
	// DeliverMessage sends a {"message": text} frame.
	DeliverMessage(text string)
	// DeliverRooms sends a {"rooms": [...]} frame.
	DeliverRooms(rooms []string)
	// Trace mirrors one hop onto the diagnostic side-channel.
	Trace(direction, protocol string, payload interface{})
	// BackendClosed signals an unrecoverable backend-side disconnect.
	BackendClosed(reason string)
}

// BackendAdapter is the uniform capability set over both backend transports.
// Exactly one adapter instance is owned by each session; the transport is
// chosen once at session creation and never re-dispatched per call.
//
// Methods return ErrBackendDown (possibly wrapped) for connection-fatal
// failures; any other non-nil error is a per-call failure whose text is safe
// to relay to the client.
type BackendAdapter interface {
	Open() error
	CreateRoom(room string) error
	ListRooms() error
	JoinRoom(room string) error
	SendMessage(room, msg string) error
	Close() error
}
