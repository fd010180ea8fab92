package chat

import (
	"encoding/json"
	"sync"
	"time"

	"NimbusChat/logger"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 256
	writeDeadline = 5 * time.Second
)

// Conn is the session's view of the client connection. All writes funnel
// through a single writer goroutine, so chat content and trace events never
// interleave mid-frame. Sends are best-effort: once the connection is closed
// (or the queue is full) they are dropped, never blocked on.
type Conn interface {
	SendJSON(v interface{})
	SendRaw(line []byte)
	Close()
	Done() <-chan struct{}
}

type wsConn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	c := &wsConn{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *wsConn) writeLoop() {
	defer func() { _ = c.ws.Close() }()
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Debug("client write failed, closing conn")
				c.Close()
				return
			}
		}
	}
}

func (c *wsConn) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("[conn] marshal outbound frame: %v", err)
		return
	}
	c.SendRaw(b)
}

func (c *wsConn) SendRaw(line []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- line:
	default:
		// queue full; dropping beats stalling the relay path
		logger.Warnf("[conn] send queue full, dropping %d bytes", len(line))
	}
}

func (c *wsConn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *wsConn) Done() <-chan struct{} { return c.done }
