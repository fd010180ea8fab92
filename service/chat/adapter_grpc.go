package chat

import (
	"context"
	"io"
	"sync"
	"time"

	"NimbusChat/gen/chatpb"
	"NimbusChat/service/registry"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	grpcDialTimeout = 5 * time.Second
	grpcCallTimeout = 10 * time.Second
)

// GRPCAdapter holds one client connection per session plus at most one open
// joinRoom stream for the currently joined room. Per-call errors are relayed
// to the client and never tear the session down; only losing the client
// connection itself is fatal.
type GRPCAdapter struct {
	backend  registry.Backend
	username string
	sink     Sink

	conn   *grpc.ClientConn
	client chatpb.ChatServiceClient

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu           sync.Mutex
	streamCancel context.CancelFunc
	streamDone   chan struct{}

	closeOnce sync.Once
}

func NewGRPCAdapter(backend registry.Backend, username string, sink Sink) *GRPCAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &GRPCAdapter{
		backend:    backend,
		username:   username,
		sink:       sink,
		rootCtx:    ctx,
		rootCancel: cancel,
	}
}

func (a *GRPCAdapter) Open() error {
	ctx, cancel := context.WithTimeout(a.rootCtx, grpcDialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, a.backend.Addr(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return errors.Wrapf(ErrBackendDown, "dial %s: %v", a.backend.Addr(), err)
	}
	a.conn = conn
	a.client = chatpb.NewChatServiceClient(conn)

	a.sink.Trace(TraceBackend, "connect", map[string]interface{}{
		"host": a.backend.Host,
		"port": a.backend.Port,
	})
	return nil
}

func (a *GRPCAdapter) CreateRoom(room string) error {
	ctx, cancel := context.WithTimeout(a.rootCtx, grpcCallTimeout)
	defer cancel()

	resp, err := a.client.CreateRoom(ctx, &chatpb.CreateRoomReq{RoomName: room})
	if err != nil {
		a.sink.Trace(TraceGateway, "createRoom:error", map[string]interface{}{"error": err.Error()})
		return errors.Errorf("gRPC error: %v", err)
	}

	switch {
	case resp.Success != "":
		a.sink.DeliverMessage(resp.Success)
	case resp.Error != "":
		a.sink.DeliverMessage(resp.Error)
	default:
		a.sink.DeliverMessage("CreateRoom done.")
	}
	a.sink.Trace(TraceGateway, "createRoom:ok", map[string]interface{}{"room": room})
	return nil
}

func (a *GRPCAdapter) ListRooms() error {
	ctx, cancel := context.WithTimeout(a.rootCtx, grpcCallTimeout)
	defer cancel()

	resp, err := a.client.ListRooms(ctx, &chatpb.ListRoomsReq{})
	if err != nil {
		a.sink.Trace(TraceGateway, "listRooms:error", map[string]interface{}{"error": err.Error()})
		return errors.Errorf("gRPC error: %v", err)
	}

	rooms := resp.Rooms
	if rooms == nil {
		rooms = []string{}
	}
	a.sink.DeliverRooms(rooms)
	a.sink.Trace(TraceGateway, "listRooms:ok", map[string]interface{}{"rooms": rooms})
	return nil
}

// JoinRoom opens the server-streaming call for room. Any previously open
// stream is canceled first and its reader goroutine drained before the new
// join proceeds, so events from two rooms can never interleave on one
// session, not even a stale line the old reader had already pulled off the
// wire.
func (a *GRPCAdapter) JoinRoom(room string) error {
	a.dropStream()

	ctx, cancel := context.WithCancel(a.rootCtx)
	stream, err := a.client.JoinRoom(ctx, &chatpb.JoinRoomReq{
		RoomName: room,
		Username: a.username,
	})
	if err != nil {
		cancel()
		a.sink.Trace(TraceGateway, "joinRoom:error", map[string]interface{}{"error": err.Error()})
		return errors.Errorf("gRPC error: %v", err)
	}

	done := make(chan struct{})
	a.mu.Lock()
	a.streamCancel = cancel
	a.streamDone = done
	a.mu.Unlock()

	a.sink.DeliverMessage("You joined " + room)
	a.sink.Trace(TraceGateway, "joinRoom:ok", map[string]interface{}{"room": room})

	go a.readStream(ctx, stream, room, done)
	return nil
}

// dropStream cancels the open stream, if any, and waits for its reader to
// exit. Bounded: cancellation forces the reader's Recv to return.
func (a *GRPCAdapter) dropStream() {
	a.mu.Lock()
	cancel, done := a.streamCancel, a.streamDone
	a.streamCancel, a.streamDone = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (a *GRPCAdapter) readStream(ctx context.Context, stream chatpb.ChatService_JoinRoomClient, room string, done chan struct{}) {
	defer close(done)
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil || status.Code(err) == codes.Canceled {
				// backend finished the stream, or it was superseded by a
				// newer join or session teardown
				a.sink.Trace(TraceGateway, "stream:end", map[string]interface{}{"room": room})
				return
			}
			a.sink.DeliverMessage("gRPC stream error: " + err.Error())
			a.sink.Trace(TraceGateway, "stream:error", map[string]interface{}{"error": err.Error()})
			return
		}

		m := ev.GetMsg()
		if m == nil {
			continue
		}
		a.sink.DeliverMessage(m.Username + ": " + m.Msg)
		a.sink.Trace(TraceGateway, "stream:data", map[string]interface{}{
			"roomName": m.RoomName,
			"username": m.Username,
			"msg":      m.Msg,
		})
	}
}

func (a *GRPCAdapter) SendMessage(room, msg string) error {
	ctx, cancel := context.WithTimeout(a.rootCtx, grpcCallTimeout)
	defer cancel()

	resp, err := a.client.SendMsg(ctx, &chatpb.SendMsgReq{
		RoomName: room,
		Username: a.username,
		Msg:      msg,
	})
	if err != nil {
		a.sink.Trace(TraceGateway, "sendMsg:error", map[string]interface{}{"error": err.Error()})
		return errors.Errorf("gRPC error: %v", err)
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	a.sink.Trace(TraceGateway, "sendMsg:ok", map[string]interface{}{"room": room})
	return nil
}

// HasOpenStream reports whether a joinRoom stream is currently live. Used by
// resource-leak checks.
func (a *GRPCAdapter) HasOpenStream() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.streamCancel != nil
}

// Close cancels any open stream, waits for its reader to exit, and releases
// the client connection. Safe to call more than once.
func (a *GRPCAdapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.dropStream()
		a.rootCancel()
		if a.conn != nil {
			err = a.conn.Close()
		}
	})
	return err
}
