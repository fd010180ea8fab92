package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"NimbusChat/logger"
	"NimbusChat/service/history"
	"NimbusChat/service/registry"
	"NimbusChat/tools/ids"
	"NimbusChat/tools/safe"
)

// State is the session lifecycle position. Transitions only move forward.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateBackendLinking
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateBackendLinking:
		return "BACKEND_LINKING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session owns exactly one client connection and exactly one backend adapter.
// Commands are dispatched strictly in arrival order by the single read loop;
// Session also implements Sink, so the adapter's inbound traffic flows back
// through it to the client. Sessions share nothing with each other.
type Session struct {
	ID       string
	Username string
	Backend  registry.Backend

	conn    Conn
	tracer  *Tracer
	adapter BackendAdapter
	store   history.Store // nil disables persistence

	state atomic.Int32

	mu          sync.Mutex
	currentRoom string

	closeOnce sync.Once
}

// NewSession is called after the connection has been authenticated and a
// backend resolved, so it starts in AUTHENTICATED.
func NewSession(username string, backend registry.Backend, conn Conn, store history.Store) *Session {
	s := &Session{
		ID:       ids.GenerateString(),
		Username: username,
		Backend:  backend,
		conn:     conn,
		tracer:   NewTracer(conn, backend),
		store:    store,
	}
	s.state.Store(int32(StateAuthenticated))
	return s
}

// Bind attaches the adapter. Separate from NewSession because the adapter
// needs the session as its Sink.
func (s *Session) Bind(adapter BackendAdapter) { s.adapter = adapter }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Room returns the currently joined room, if any.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoom
}

func (s *Session) setRoom(room string) {
	s.mu.Lock()
	s.currentRoom = room
	s.mu.Unlock()
}

// Link attempts the backend connection. On failure the client gets a visible
// notice and the session is torn down; there is no retry.
func (s *Session) Link() error {
	s.setState(StateBackendLinking)
	s.tracer.Emit(TraceMeta, "session", map[string]interface{}{
		"message": "WebSocket connected using " + s.Backend.Label + " (" + s.Backend.Transport + ")",
	})

	if err := s.adapter.Open(); err != nil {
		s.DeliverMessage("Failed to connect to " + s.Backend.Label + " backend (" + s.Backend.Addr() + "): " + err.Error())
		s.tracer.Emit(TraceBackend, "error", map[string]interface{}{"error": err.Error()})
		s.Close()
		return err
	}

	s.setState(StateActive)
	return nil
}

// Dispatch handles one raw client frame. Malformed frames and unknown verbs
// are dropped without touching session or backend state.
func (s *Session) Dispatch(raw []byte) {
	if s.State() != StateActive {
		return
	}

	cmd, err := ParseCommand(raw)
	if err != nil {
		s.tracer.Emit(TraceGateway, "error", map[string]interface{}{"error": err.Error()})
		return
	}

	s.tracer.Emit(TraceSend, s.Backend.Transport, map[string]interface{}{
		"command": string(cmd.Verb),
		"payload": map[string]string{"arg": string(cmd.Verb), "room": cmd.Room, "msg": cmd.Msg},
	})

	switch cmd.Verb {
	case VerbCreateRoom:
		if cmd.Room == "" {
			s.DeliverMessage("Room name required.")
			return
		}
		s.finish(s.adapter.CreateRoom(cmd.Room))

	case VerbListRooms:
		s.finish(s.adapter.ListRooms())

	case VerbJoinRoom:
		if cmd.Room == "" {
			s.DeliverMessage("Room name required.")
			return
		}
		err := s.adapter.JoinRoom(cmd.Room)
		if err == nil {
			s.setRoom(cmd.Room)
		}
		s.finish(err)

	case VerbSendMsg:
		s.dispatchSend(cmd)

	case VerbQuit:
		s.Close()
	}
}

// dispatchSend keeps the room-precondition asymmetry between the two backend
// kinds: streaming backends require a joined room gateway-side (checked before
// anything else, even an empty body), line-protocol backends forward the
// frame's own room field and let the backend reject.
func (s *Session) dispatchSend(cmd Command) {
	joined := s.Room()

	if s.Backend.Transport == registry.TransportGRPC {
		if joined == "" {
			s.DeliverMessage("Join a room first!")
			return
		}
		if !cmd.HasMsg() {
			return
		}
		if err := s.adapter.SendMessage(joined, cmd.Msg); err != nil {
			s.finish(err)
			return
		}
		s.persist(joined, cmd.Msg)
		return
	}

	if !cmd.HasMsg() {
		return
	}
	if err := s.adapter.SendMessage(cmd.Room, cmd.Msg); err != nil {
		s.finish(err)
		return
	}
	if joined != "" {
		s.persist(joined, cmd.Msg)
	}
}

// finish applies the error policy for one routed command: fatal errors close
// the session, per-call errors are reported inline.
func (s *Session) finish(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrBackendDown) {
		s.Close()
		return
	}
	s.DeliverMessage(err.Error())
}

// persist appends to the history store fire-and-forget: a failed write is
// traced and logged, the chat flow is unaffected.
func (s *Session) persist(room, msg string) {
	if s.store == nil {
		return
	}
	username, backendID := s.Username, s.Backend.ID
	store, tracer := s.store, s.tracer
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Append(ctx, room, username, msg, backendID); err != nil {
			logger.Errorf("[session] history append failed room=%s backend=%s: %v", room, backendID, err)
			tracer.Emit(TraceGateway, "persist:error", map[string]interface{}{"error": err.Error()})
		}
	})
}

// ---- Sink ----

func (s *Session) DeliverRaw(line []byte) {
	s.conn.SendRaw(line)
}

func (s *Session) DeliverMessage(text string) {
	s.conn.SendJSON(map[string]string{"message": text})
}

func (s *Session) DeliverRooms(rooms []string) {
	s.conn.SendJSON(map[string][]string{"rooms": rooms})
}

func (s *Session) Trace(direction, protocol string, payload interface{}) {
	s.tracer.Emit(direction, protocol, payload)
}

// BackendClosed is the adapter's fatal signal; it collapses into the same
// idempotent teardown as a client-side close.
func (s *Session) BackendClosed(reason string) {
	s.Close()
}

// Close releases the adapter (socket, any open stream) and the client
// connection exactly once; safe under near-simultaneous client-close and
// backend-close.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.setState(StateClosing)
		s.tracer.Emit(TraceMeta, "session", map[string]interface{}{"message": "WebSocket closed"})
		if s.adapter != nil {
			if err := s.adapter.Close(); err != nil {
				logger.Debug("adapter close: " + err.Error())
			}
		}
		s.conn.Close()
		s.setState(StateClosed)
		logger.Infof("[session] closed id=%s user=%s backend=%s", s.ID, s.Username, s.Backend.ID)
	})
}
