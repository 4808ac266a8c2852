package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	domainmessages "campusconnect/internal/domain/messages"
)

// Server implements the messaging gRPC contract over a message store.
type Server struct {
	Store  domainmessages.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// NewGRPCServer builds a gRPC server with svc registered and calls logged.
func NewGRPCServer(svc Service, logger *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logCalls(logger)))
	Register(srv, svc)
	return srv
}

func logCalls(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		if logger != nil {
			level := slog.LevelDebug
			if err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "grpc call",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration", time.Since(started),
			)
		}
		return resp, err
	}
}

// SendMessage stores a message in the room shared by sender and receiver.
func (s *Server) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	if s.Store == nil {
		return nil, status.Error(codes.Unavailable, "store unavailable")
	}
	msg, err := domainmessages.New(req.SenderID, req.ReceiverID, req.Text, s.now())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	saved, err := s.Store.Append(ctx, msg)
	if err != nil {
		return nil, storeError("save message", err)
	}
	if s.Logger != nil {
		s.Logger.Info("message stored", "room_id", saved.RoomID, "message_id", saved.ID)
	}
	return &SendMessageResponse{Message: toWireMessage(saved)}, nil
}

// ListMessages returns the room history oldest first.
func (s *Server) ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	if s.Store == nil {
		return nil, status.Error(codes.Unavailable, "store unavailable")
	}
	userID := strings.TrimSpace(req.UserID)
	peerID := strings.TrimSpace(req.PeerID)
	if userID == "" || peerID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id and peer_id are required")
	}
	history, err := s.Store.History(ctx, domainmessages.RoomID(userID, peerID))
	if err != nil {
		return nil, storeError("list messages", err)
	}
	return &ListMessagesResponse{Messages: toWireMessages(history)}, nil
}

// ListConversations returns the latest message of every room the user is in.
func (s *Server) ListConversations(ctx context.Context, req *ListConversationsRequest) (*ListConversationsResponse, error) {
	if s.Store == nil {
		return nil, status.Error(codes.Unavailable, "store unavailable")
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	latest, err := s.Store.LatestPerRoom(ctx, userID)
	if err != nil {
		return nil, storeError("list conversations", err)
	}
	return &ListConversationsResponse{Messages: toWireMessages(latest)}, nil
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func storeError(action string, err error) error {
	if errors.Is(err, domainmessages.ErrUnavailable) {
		return status.Error(codes.Unavailable, "store unavailable")
	}
	return status.Errorf(codes.Internal, "%s: %v", action, err)
}

func toWireMessages(msgs []domainmessages.Message) []*Message {
	out := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toWireMessage(msg))
	}
	return out
}

func toWireMessage(msg domainmessages.Message) *Message {
	return &Message{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Read:       msg.Read,
		CreatedAt:  tsOrNil(msg.CreatedAt),
	}
}

func fromWireMessage(msg *Message) domainmessages.Message {
	if msg == nil {
		return domainmessages.Message{}
	}
	createdAt := time.Time{}
	if msg.CreatedAt != nil {
		createdAt = msg.CreatedAt.AsTime()
	}
	return domainmessages.Message{
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Read:       msg.Read,
		CreatedAt:  createdAt,
	}
}

func tsOrNil(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

var _ Service = (*Server)(nil)
