package chatpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ChatService_CreateRoom_FullMethodName = "/chat.ChatService/createRoom"
	ChatService_ListRooms_FullMethodName  = "/chat.ChatService/listRooms"
	ChatService_JoinRoom_FullMethodName   = "/chat.ChatService/joinRoom"
	ChatService_SendMsg_FullMethodName    = "/chat.ChatService/sendMsg"
)

// ChatServiceClient is the client API for the chat.ChatService service.
type ChatServiceClient interface {
	CreateRoom(ctx context.Context, in *CreateRoomReq, opts ...grpc.CallOption) (*OpStatus, error)
	ListRooms(ctx context.Context, in *ListRoomsReq, opts ...grpc.CallOption) (*ListRoomsRes, error)
	JoinRoom(ctx context.Context, in *JoinRoomReq, opts ...grpc.CallOption) (ChatService_JoinRoomClient, error)
	SendMsg(ctx context.Context, in *SendMsgReq, opts ...grpc.CallOption) (*OpStatus, error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func (c *chatServiceClient) CreateRoom(ctx context.Context, in *CreateRoomReq, opts ...grpc.CallOption) (*OpStatus, error) {
	out := new(OpStatus)
	err := c.cc.Invoke(ctx, ChatService_CreateRoom_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) ListRooms(ctx context.Context, in *ListRoomsReq, opts ...grpc.CallOption) (*ListRoomsRes, error) {
	out := new(ListRoomsRes)
	err := c.cc.Invoke(ctx, ChatService_ListRooms_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) JoinRoom(ctx context.Context, in *JoinRoomReq, opts ...grpc.CallOption) (ChatService_JoinRoomClient, error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_JoinRoom_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &chatServiceJoinRoomClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type ChatService_JoinRoomClient interface {
	Recv() (*StreamMsg, error)
	grpc.ClientStream
}

type chatServiceJoinRoomClient struct {
	grpc.ClientStream
}

func (x *chatServiceJoinRoomClient) Recv() (*StreamMsg, error) {
	m := new(StreamMsg)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *chatServiceClient) SendMsg(ctx context.Context, in *SendMsgReq, opts ...grpc.CallOption) (*OpStatus, error) {
	out := new(OpStatus)
	err := c.cc.Invoke(ctx, ChatService_SendMsg_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChatServiceServer is the server API for the chat.ChatService service.
type ChatServiceServer interface {
	CreateRoom(context.Context, *CreateRoomReq) (*OpStatus, error)
	ListRooms(context.Context, *ListRoomsReq) (*ListRoomsRes, error)
	JoinRoom(*JoinRoomReq, ChatService_JoinRoomServer) error
	SendMsg(context.Context, *SendMsgReq) (*OpStatus, error)
}

// UnimplementedChatServiceServer can be embedded for forward-compatible
// partial implementations (test doubles mostly).
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) CreateRoom(context.Context, *CreateRoomReq) (*OpStatus, error) {
	return nil, status.Errorf(codes.Unimplemented, "method createRoom not implemented")
}

func (UnimplementedChatServiceServer) ListRooms(context.Context, *ListRoomsReq) (*ListRoomsRes, error) {
	return nil, status.Errorf(codes.Unimplemented, "method listRooms not implemented")
}

func (UnimplementedChatServiceServer) JoinRoom(*JoinRoomReq, ChatService_JoinRoomServer) error {
	return status.Errorf(codes.Unimplemented, "method joinRoom not implemented")
}

func (UnimplementedChatServiceServer) SendMsg(context.Context, *SendMsgReq) (*OpStatus, error) {
	return nil, status.Errorf(codes.Unimplemented, "method sendMsg not implemented")
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func _ChatService_CreateRoom_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateRoomReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).CreateRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChatService_CreateRoom_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).CreateRoom(ctx, req.(*CreateRoomReq))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_ListRooms_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListRoomsReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).ListRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChatService_ListRooms_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).ListRooms(ctx, req.(*ListRoomsReq))
	}
	return interceptor(ctx, in, info, handler)
}

func _ChatService_JoinRoom_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(JoinRoomReq)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).JoinRoom(m, &chatServiceJoinRoomServer{ServerStream: stream})
}

type ChatService_JoinRoomServer interface {
	Send(*StreamMsg) error
	grpc.ServerStream
}

type chatServiceJoinRoomServer struct {
	grpc.ServerStream
}

func (x *chatServiceJoinRoomServer) Send(m *StreamMsg) error {
	return x.ServerStream.SendMsg(m)
}

func _ChatService_SendMsg_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SendMsgReq)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).SendMsg(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ChatService_SendMsg_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).SendMsg(ctx, req.(*SendMsgReq))
	}
	return interceptor(ctx, in, info, handler)
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for the ChatService service.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chat.ChatService",
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "createRoom",
			Handler:    _ChatService_CreateRoom_Handler,
		},
		{
			MethodName: "listRooms",
			Handler:    _ChatService_ListRooms_Handler,
		},
		{
			MethodName: "sendMsg",
			Handler:    _ChatService_SendMsg_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "joinRoom",
			Handler:       _ChatService_JoinRoom_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "proto/chat.proto",
}
