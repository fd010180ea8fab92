package chat

import (
	"net/http"

	"NimbusChat/logger"
	"NimbusChat/service/history"
	"NimbusChat/service/registry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Authenticator validates the credentials carried on the upgrade request.
type Authenticator interface {
	Authenticate(r *http.Request) (username string, err error)
}

// Server is the gateway's WebSocket surface: it authenticates, resolves the
// requested backend, and runs one session per accepted connection.
type Server struct {
	reg   *registry.Registry
	authn Authenticator
	store history.Store
}

func NewServer(reg *registry.Registry, authn Authenticator, store history.Store) *Server {
	return &Server{reg: reg, authn: authn, store: store}
}

// HandleWS serves GET /ws?backend=id. Authentication happens before the
// upgrade: a rejected token refuses the connection outright, no session is
// ever created for it.
func (s *Server) HandleWS(c *gin.Context) {
	username, err := s.authn.Authenticate(c.Request)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	backend, err := s.reg.Resolve(c.Query("backend"))
	if err != nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed user=%s: %v", username, err)
		return
	}

	conn := newWSConn(ws)
	sess := NewSession(username, backend, conn, s.store)
	sess.Bind(newAdapter(backend, username, sess))

	logger.Infof("[ws] session started id=%s user=%s backend=%s transport=%s",
		sess.ID, username, backend.ID, backend.Transport)

	s.run(sess, ws)
}

// run links the backend and pumps the read loop until either side closes.
// Client frames are dispatched in arrival order, one at a time.
func (s *Server) run(sess *Session, ws *websocket.Conn) {
	defer sess.Close()

	if err := sess.Link(); err != nil {
		logger.Infof("[ws] backend link failed id=%s: %v", sess.ID, err)
		return
	}

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed id=%s", sess.ID)
			} else {
				logger.Infof("[ws] read err id=%s: %v", sess.ID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		sess.Dispatch(data)
		if sess.State() != StateActive {
			return
		}
	}
}

// newAdapter picks the transport variant once, at session creation.
func newAdapter(backend registry.Backend, username string, sink Sink) BackendAdapter {
	if backend.Transport == registry.TransportGRPC {
		return NewGRPCAdapter(backend, username, sink)
	}
	return NewLineAdapter(backend, username, sink)
}
