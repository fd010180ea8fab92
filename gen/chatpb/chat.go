// Package chatpb holds the chat.ChatService protocol types. The messages are
// maintained by hand against proto/chat.proto; the struct tags carry the
// field numbers and must stay in sync with the .proto file.
package chatpb

import (
	"fmt"

	"google.golang.org/protobuf/protoadapt"
)

// The grpc codec adapts legacy messages through protoadapt; these assertions
// pin every message to the interface that adaptation requires.
var (
	_ protoadapt.MessageV1 = (*CreateRoomReq)(nil)
	_ protoadapt.MessageV1 = (*OpStatus)(nil)
	_ protoadapt.MessageV1 = (*ListRoomsReq)(nil)
	_ protoadapt.MessageV1 = (*ListRoomsRes)(nil)
	_ protoadapt.MessageV1 = (*JoinRoomReq)(nil)
	_ protoadapt.MessageV1 = (*ChatMessage)(nil)
	_ protoadapt.MessageV1 = (*StreamMsg)(nil)
	_ protoadapt.MessageV1 = (*SendMsgReq)(nil)
)

type CreateRoomReq struct {
	RoomName string `protobuf:"bytes,1,opt,name=roomName,proto3" json:"roomName,omitempty"`
}

func (m *CreateRoomReq) Reset()         { *m = CreateRoomReq{} }
func (m *CreateRoomReq) String() string { return fmt.Sprintf("%+v", *m) }
func (*CreateRoomReq) ProtoMessage()    {}

// OpStatus is the unary response shape shared by createRoom and sendMsg.
// Exactly one of Success/Error is set by the backend.
type OpStatus struct {
	Success string `protobuf:"bytes,1,opt,name=success,proto3" json:"success,omitempty"`
	Error   string `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *OpStatus) Reset()         { *m = OpStatus{} }
func (m *OpStatus) String() string { return fmt.Sprintf("%+v", *m) }
func (*OpStatus) ProtoMessage()    {}

type ListRoomsReq struct{}

func (m *ListRoomsReq) Reset()         { *m = ListRoomsReq{} }
func (m *ListRoomsReq) String() string { return "" }
func (*ListRoomsReq) ProtoMessage()    {}

type ListRoomsRes struct {
	Rooms []string `protobuf:"bytes,1,rep,name=rooms,proto3" json:"rooms,omitempty"`
}

func (m *ListRoomsRes) Reset()         { *m = ListRoomsRes{} }
func (m *ListRoomsRes) String() string { return fmt.Sprintf("%+v", *m) }
func (*ListRoomsRes) ProtoMessage()    {}

type JoinRoomReq struct {
	RoomName string `protobuf:"bytes,1,opt,name=roomName,proto3" json:"roomName,omitempty"`
	Username string `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *JoinRoomReq) Reset()         { *m = JoinRoomReq{} }
func (m *JoinRoomReq) String() string { return fmt.Sprintf("%+v", *m) }
func (*JoinRoomReq) ProtoMessage()    {}

type ChatMessage struct {
	RoomName string `protobuf:"bytes,1,opt,name=roomName,proto3" json:"roomName,omitempty"`
	Username string `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
	Msg      string `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
}

func (m *ChatMessage) Reset()         { *m = ChatMessage{} }
func (m *ChatMessage) String() string { return fmt.Sprintf("%+v", *m) }
func (*ChatMessage) ProtoMessage()    {}

// StreamMsg is one server-pushed event on an open joinRoom stream.
type StreamMsg struct {
	Msg *ChatMessage `protobuf:"bytes,1,opt,name=msg,proto3" json:"msg,omitempty"`
}

func (m *StreamMsg) Reset()         { *m = StreamMsg{} }
func (m *StreamMsg) String() string { return fmt.Sprintf("%+v", *m) }
func (*StreamMsg) ProtoMessage()    {}

func (m *StreamMsg) GetMsg() *ChatMessage {
	if m == nil {
		return nil
	}
	return m.Msg
}

type SendMsgReq struct {
	RoomName string `protobuf:"bytes,1,opt,name=roomName,proto3" json:"roomName,omitempty"`
	Username string `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
	Msg      string `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
}

func (m *SendMsgReq) Reset()         { *m = SendMsgReq{} }
func (m *SendMsgReq) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendMsgReq) ProtoMessage()    {}
