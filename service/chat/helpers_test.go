package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// fakeConn is an in-memory Conn capturing every outbound frame.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	done   chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{done: make(chan struct{})}
}

func (c *fakeConn) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.SendRaw(b)
}

func (c *fakeConn) SendRaw(line []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	cp := make([]byte, len(line))
	copy(cp, line)
	c.frames = append(c.frames, cp)
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *fakeConn) Done() <-chan struct{} { return c.done }

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// messages decodes captured frames and returns the {"message": ...} values
// in send order.
func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, f := range c.frames {
		var m map[string]interface{}
		if json.Unmarshal(f, &m) != nil {
			continue
		}
		if s, ok := m["message"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// traces decodes captured frames and returns the trace events in send order.
func (c *fakeConn) traces() []TraceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []TraceEvent
	for _, f := range c.frames {
		var tf traceFrame
		if json.Unmarshal(f, &tf) != nil {
			continue
		}
		if tf.Trace.Direction != "" {
			out = append(out, tf.Trace)
		}
	}
	return out
}

// fakeAdapter records routed operations and returns configured errors.
type fakeAdapter struct {
	mu      sync.Mutex
	calls   []string
	openErr error
	callErr error
	closed  int
}

func (a *fakeAdapter) record(call string) {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
}

func (a *fakeAdapter) Open() error { return a.openErr }

func (a *fakeAdapter) CreateRoom(room string) error {
	a.record("create:" + room)
	return a.callErr
}

func (a *fakeAdapter) ListRooms() error {
	a.record("list")
	return a.callErr
}

func (a *fakeAdapter) JoinRoom(room string) error {
	a.record("join:" + room)
	return a.callErr
}

func (a *fakeAdapter) SendMessage(room, msg string) error {
	a.record("send:" + room + ":" + msg)
	return a.callErr
}

func (a *fakeAdapter) Close() error {
	a.mu.Lock()
	a.closed++
	a.mu.Unlock()
	return nil
}

func (a *fakeAdapter) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAdapter) closeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// fakeStore records history appends and signals each one.
type fakeStore struct {
	mu       sync.Mutex
	appends  []string
	appended chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{appended: make(chan struct{}, 16)}
}

func (s *fakeStore) Append(ctx context.Context, room, username, body, backendID string) error {
	s.mu.Lock()
	s.appends = append(s.appends, room+"|"+username+"|"+body+"|"+backendID)
	s.mu.Unlock()
	s.appended <- struct{}{}
	return nil
}

func (s *fakeStore) Fetch(ctx context.Context, room, backendID string, limit int) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) waitAppend(timeout time.Duration) bool {
	select {
	case <-s.appended:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *fakeStore) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.appends...)
}

// captureSink records adapter output for transport-level tests.
type captureSink struct {
	mu       sync.Mutex
	raw      [][]byte
	msgs     []string
	rooms    [][]string
	rawCh    chan string
	msgCh    chan string
	closedCh chan string
}

func newCaptureSink() *captureSink {
	return &captureSink{
		rawCh:    make(chan string, 64),
		msgCh:    make(chan string, 64),
		closedCh: make(chan string, 4),
	}
}

func (s *captureSink) DeliverRaw(line []byte) {
	cp := make([]byte, len(line))
	copy(cp, line)
	s.mu.Lock()
	s.raw = append(s.raw, cp)
	s.mu.Unlock()
	s.rawCh <- string(cp)
}

func (s *captureSink) DeliverMessage(text string) {
	s.mu.Lock()
	s.msgs = append(s.msgs, text)
	s.mu.Unlock()
	s.msgCh <- text
}

func (s *captureSink) DeliverRooms(rooms []string) {
	s.mu.Lock()
	s.rooms = append(s.rooms, rooms)
	s.mu.Unlock()
}

func (s *captureSink) Trace(direction, protocol string, payload interface{}) {}

func (s *captureSink) BackendClosed(reason string) {
	select {
	case s.closedCh <- reason:
	default:
	}
}

func (s *captureSink) lastRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rooms) == 0 {
		return nil
	}
	return s.rooms[len(s.rooms)-1]
}

func waitFor(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}
