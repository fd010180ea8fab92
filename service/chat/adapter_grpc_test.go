package chat

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"NimbusChat/gen/chatpb"
	"NimbusChat/service/registry"
)

// fakeChatServer is a scriptable in-process chat backend.
type fakeChatServer struct {
	chatpb.UnimplementedChatServiceServer

	createResp *chatpb.OpStatus
	sendResp   *chatpb.OpStatus
	rooms      []string
	push       []*chatpb.ChatMessage
	pushByRoom map[string][]*chatpb.ChatMessage
	endStream  bool

	joins  chan string
	active atomic.Int32
}

func newFakeChatServer() *fakeChatServer {
	return &fakeChatServer{joins: make(chan string, 8)}
}

func (s *fakeChatServer) CreateRoom(ctx context.Context, req *chatpb.CreateRoomReq) (*chatpb.OpStatus, error) {
	if s.createResp != nil {
		return s.createResp, nil
	}
	return &chatpb.OpStatus{Success: "Room " + req.RoomName + " created."}, nil
}

func (s *fakeChatServer) ListRooms(ctx context.Context, req *chatpb.ListRoomsReq) (*chatpb.ListRoomsRes, error) {
	return &chatpb.ListRoomsRes{Rooms: s.rooms}, nil
}

func (s *fakeChatServer) SendMsg(ctx context.Context, req *chatpb.SendMsgReq) (*chatpb.OpStatus, error) {
	if s.sendResp != nil {
		return s.sendResp, nil
	}
	return &chatpb.OpStatus{Success: "ok"}, nil
}

// JoinRoom pushes any scripted events, then either ends the stream cleanly or
// holds it open until the client cancels it.
func (s *fakeChatServer) JoinRoom(req *chatpb.JoinRoomReq, stream chatpb.ChatService_JoinRoomServer) error {
	s.joins <- req.RoomName
	s.active.Add(1)
	defer s.active.Add(-1)

	push := s.push
	if s.pushByRoom != nil {
		push = s.pushByRoom[req.RoomName]
	}
	for _, m := range push {
		if err := stream.Send(&chatpb.StreamMsg{Msg: m}); err != nil {
			return err
		}
	}
	if s.endStream {
		return nil
	}
	<-stream.Context().Done()
	return nil
}

func startChatServer(t *testing.T, impl chatpb.ChatServiceServer) registry.Backend {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	chatpb.RegisterChatServiceServer(srv, impl)
	go srv.Serve(l)
	t.Cleanup(srv.Stop)

	addr := l.Addr().(*net.TCPAddr)
	return registry.Backend{
		ID:        "grpc",
		Label:     "gRPC",
		Transport: registry.TransportGRPC,
		Host:      "127.0.0.1",
		Port:      addr.Port,
	}
}

func openGRPCAdapter(t *testing.T, impl chatpb.ChatServiceServer, sink Sink) *GRPCAdapter {
	t.Helper()
	backend := startChatServer(t, impl)
	a := NewGRPCAdapter(backend, "alice", sink)
	require.NoError(t, a.Open())
	t.Cleanup(func() { a.Close() })
	return a
}

func waitActive(t *testing.T, srv *fakeChatServer, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.active.Load() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d active streams, have %d", want, srv.active.Load())
}

func TestGRPCAdapterCreateRoom(t *testing.T) {
	srv := newFakeChatServer()
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.CreateRoom("lobby"))

	msg, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "Room lobby created.", msg)
}

func TestGRPCAdapterCreateRoomBackendError(t *testing.T) {
	srv := newFakeChatServer()
	srv.createResp = &chatpb.OpStatus{Error: "Room already exists."}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.CreateRoom("lobby"))

	msg, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "Room already exists.", msg)
}

func TestGRPCAdapterCreateRoomEmptyStatus(t *testing.T) {
	srv := newFakeChatServer()
	srv.createResp = &chatpb.OpStatus{}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.CreateRoom("lobby"))

	msg, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "CreateRoom done.", msg)
}

func TestGRPCAdapterListRooms(t *testing.T) {
	srv := newFakeChatServer()
	srv.rooms = []string{"lobby", "dev"}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.ListRooms())
	assert.Equal(t, []string{"lobby", "dev"}, sink.lastRooms())
}

func TestGRPCAdapterListRoomsEmpty(t *testing.T) {
	srv := newFakeChatServer()
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.ListRooms())
	assert.Equal(t, []string{}, sink.lastRooms())
}

func TestGRPCAdapterJoinRoomDeliversNoticeAndEvents(t *testing.T) {
	srv := newFakeChatServer()
	srv.push = []*chatpb.ChatMessage{
		{RoomName: "lobby", Username: "bob", Msg: "hi"},
	}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.JoinRoom("lobby"))
	assert.True(t, a.HasOpenStream())

	notice, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "You joined lobby", notice)

	event, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "bob: hi", event)
}

func TestGRPCAdapterJoinSupersedesPriorStream(t *testing.T) {
	srv := newFakeChatServer()
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.JoinRoom("a"))
	require.Equal(t, "a", <-srv.joins)
	waitActive(t, srv, 1)

	require.NoError(t, a.JoinRoom("b"))
	require.Equal(t, "b", <-srv.joins)

	// the first stream must be canceled, never two live at once
	waitActive(t, srv, 1)
	assert.True(t, a.HasOpenStream())
}

func TestGRPCAdapterServerEndedStreamIsSilent(t *testing.T) {
	srv := newFakeChatServer()
	srv.push = []*chatpb.ChatMessage{
		{RoomName: "lobby", Username: "bob", Msg: "hi"},
	}
	srv.endStream = true
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.JoinRoom("lobby"))

	notice, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "You joined lobby", notice)

	event, ok := waitFor(sink.msgCh, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "bob: hi", event)

	// a clean server-side end is not an error the client should see
	extra, ok := waitFor(sink.msgCh, 300*time.Millisecond)
	assert.False(t, ok, "unexpected message after clean stream end: %q", extra)
}

func TestGRPCAdapterNoStaleEventsAfterRejoin(t *testing.T) {
	srv := newFakeChatServer()
	srv.pushByRoom = map[string][]*chatpb.ChatMessage{
		"a": {
			{RoomName: "a", Username: "anna", Msg: "one"},
			{RoomName: "a", Username: "anna", Msg: "two"},
			{RoomName: "a", Username: "anna", Msg: "three"},
			{RoomName: "a", Username: "anna", Msg: "four"},
			{RoomName: "a", Username: "anna", Msg: "five"},
		},
		"b": {
			{RoomName: "b", Username: "bea", Msg: "hello"},
		},
	}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.JoinRoom("a"))
	require.NoError(t, a.JoinRoom("b"))

	// drain everything up to room b's first event; once "You joined b" has
	// been delivered, no room-a line may appear
	var joinedB bool
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-sink.msgCh:
			if joinedB {
				assert.NotContains(t, msg, "anna:", "stale room-a event after joining b")
			}
			if msg == "You joined b" {
				joinedB = true
			}
			if msg == "bea: hello" {
				require.True(t, joinedB, "room b event before its join notice")
				return
			}
		case <-deadline:
			t.Fatal("never received room b's event")
		}
	}
}

func TestGRPCAdapterSendMsgBackendErrorIsNonFatal(t *testing.T) {
	srv := newFakeChatServer()
	srv.sendResp = &chatpb.OpStatus{Error: "Send a message after joining a room!"}
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	err := a.SendMessage("", "hello")
	require.Error(t, err)
	assert.Equal(t, "Send a message after joining a room!", err.Error())
	assert.False(t, errors.Is(err, ErrBackendDown))
}

func TestGRPCAdapterCloseCancelsStream(t *testing.T) {
	srv := newFakeChatServer()
	sink := newCaptureSink()
	a := openGRPCAdapter(t, srv, sink)

	require.NoError(t, a.JoinRoom("lobby"))
	<-srv.joins
	waitActive(t, srv, 1)

	require.NoError(t, a.Close())
	waitActive(t, srv, 0)
	assert.False(t, a.HasOpenStream())

	// idempotent
	require.NoError(t, a.Close())
}

func TestGRPCAdapterDialFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	l.Close()

	backend := registry.Backend{
		ID: "grpc", Label: "gRPC", Transport: registry.TransportGRPC,
		Host: "127.0.0.1", Port: addr.Port,
	}

	a := NewGRPCAdapter(backend, "alice", newCaptureSink())
	err = a.Open()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendDown))
}
