package chat

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NimbusChat/service/registry"

	"github.com/pkg/errors"
)

const lineDialTimeout = 5 * time.Second

// lineFrame is the outbound wire shape for line-protocol backends: one JSON
// object per line, newline-terminated.
type lineFrame struct {
	Username string `json:"username"`
	Arg      string `json:"arg"`
	Room     string `json:"room,omitempty"`
	Msg      string `json:"msg,omitempty"`
}

// LineAdapter speaks newline-delimited JSON over one TCP socket. Outbound
// frames are written atomically (single Write per line); inbound bytes are
// split on newline and each complete line is relayed verbatim — the adapter
// never interprets backend replies. Partial trailing data is retained by the
// buffered reader and never forwarded early.
type LineAdapter struct {
	backend  registry.Backend
	username string
	sink     Sink

	writeMu sync.Mutex
	conn    net.Conn

	closing  atomic.Bool
	downOnce sync.Once
}

func NewLineAdapter(backend registry.Backend, username string, sink Sink) *LineAdapter {
	return &LineAdapter{backend: backend, username: username, sink: sink}
}

func (a *LineAdapter) Open() error {
	conn, err := net.DialTimeout("tcp", a.backend.Addr(), lineDialTimeout)
	if err != nil {
		return errors.Wrapf(ErrBackendDown, "dial %s: %v", a.backend.Addr(), err)
	}
	a.conn = conn

	a.sink.DeliverMessage("Connected to " + a.backend.Label + " backend (" + a.backend.Addr() + ")")
	a.sink.Trace(TraceBackend, "connect", map[string]interface{}{
		"host": a.backend.Host,
		"port": a.backend.Port,
	})

	go a.readLoop()
	return nil
}

func (a *LineAdapter) readLoop() {
	reader := bufio.NewReader(a.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// any partial trailing data without a newline is discarded:
			// only complete lines are ever relayed
			a.down("backend connection closed")
			return
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		a.sink.Trace(TraceRecv, a.backend.Transport, map[string]interface{}{"raw": trimmed})
		a.sink.DeliverRaw([]byte(trimmed))
	}
}

// down reports the backend as unrecoverable exactly once. A locally initiated
// Close does not count as a backend failure.
func (a *LineAdapter) down(reason string) {
	if a.closing.Load() {
		return
	}
	a.downOnce.Do(func() {
		a.sink.Trace(TraceBackend, "close", map[string]interface{}{"message": reason})
		a.sink.BackendClosed(reason)
	})
}

func (a *LineAdapter) writeFrame(verb Verb, room, msg string) error {
	f := lineFrame{Username: a.username, Arg: string(verb)}
	if room != "" {
		f.Room = room
	}
	if strings.TrimSpace(msg) != "" {
		f.Msg = msg
	}

	b, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "marshal line frame")
	}
	b = append(b, '\n')

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.conn == nil {
		return errors.Wrap(ErrBackendDown, "no backend connection")
	}
	if _, err := a.conn.Write(b); err != nil {
		a.down("backend write failed")
		return errors.Wrapf(ErrBackendDown, "write frame: %v", err)
	}
	return nil
}

func (a *LineAdapter) CreateRoom(room string) error {
	return a.writeFrame(VerbCreateRoom, room, "")
}

func (a *LineAdapter) ListRooms() error {
	return a.writeFrame(VerbListRooms, "", "")
}

func (a *LineAdapter) JoinRoom(room string) error {
	return a.writeFrame(VerbJoinRoom, room, "")
}

// SendMessage forwards regardless of room membership; line-protocol backends
// reject sends outside a room themselves.
func (a *LineAdapter) SendMessage(room, msg string) error {
	return a.writeFrame(VerbSendMsg, room, msg)
}

func (a *LineAdapter) Close() error {
	a.closing.Store(true)
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
