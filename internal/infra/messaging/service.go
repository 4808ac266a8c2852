package messaging

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	serviceName             = "campusconnect.messaging.v1.Messaging"
	sendMessageMethod       = "/" + serviceName + "/SendMessage"
	listMessagesMethod      = "/" + serviceName + "/ListMessages"
	listConversationsMethod = "/" + serviceName + "/ListConversations"
)

// Message is the wire form of a chat message.
type Message struct {
	ID         string                 `json:"id"`
	RoomID     string                 `json:"room_id"`
	SenderID   string                 `json:"sender_id"`
	ReceiverID string                 `json:"receiver_id"`
	Text       string                 `json:"text"`
	Read       bool                   `json:"read"`
	CreatedAt  *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type SendMessageRequest struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

type SendMessageResponse struct {
	Message *Message `json:"message"`
}

// ListMessagesRequest asks for the room shared by UserID and PeerID.
type ListMessagesRequest struct {
	UserID string `json:"user_id"`
	PeerID string `json:"peer_id"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type ListConversationsRequest struct {
	UserID string `json:"user_id"`
}

// ListConversationsResponse carries the latest message of each room.
type ListConversationsResponse struct {
	Messages []*Message `json:"messages"`
}

// Service is the server side of the messaging contract.
type Service interface {
	SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error)
	ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error)
	ListConversations(ctx context.Context, req *ListConversationsRequest) (*ListConversationsResponse, error)
}

// Register exposes svc on a gRPC server.
func Register(s grpc.ServiceRegistrar, svc Service) {
	s.RegisterService(&serviceDesc, svc)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Service)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendMessage", Handler: sendMessageHandler},
		{MethodName: "ListMessages", Handler: listMessagesHandler},
		{MethodName: "ListConversations", Handler: listConversationsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "messaging.proto",
}

func sendMessageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SendMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Service).SendMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sendMessageMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Service).SendMessage(ctx, req.(*SendMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listMessagesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListMessagesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Service).ListMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listMessagesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Service).ListMessages(ctx, req.(*ListMessagesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listConversationsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListConversationsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Service).ListConversations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listConversationsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Service).ListConversations(ctx, req.(*ListConversationsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
