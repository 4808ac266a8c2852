package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	domainmessages "campusconnect/internal/domain/messages"
)

// Config defines gRPC client settings.
type Config struct {
	Addr        string
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// Client wraps the messaging gRPC API.
type Client struct {
	conn        *grpc.ClientConn
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewClient dials the messaging service. Extra options are appended to the
// defaults, which lets tests swap in an in-memory dialer.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("messaging: address required")
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	conn, err := grpc.DialContext(dialCtx, cfg.Addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("messaging grpc connected", "addr", cfg.Addr)
	}
	return &Client{conn: conn, callTimeout: callTimeout, logger: logger}, nil
}

// Close releases the gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Send posts text from senderID to receiverID.
func (c *Client) Send(ctx context.Context, senderID, receiverID, text string) (domainmessages.Message, error) {
	req := &SendMessageRequest{SenderID: senderID, ReceiverID: receiverID, Text: text}
	resp := new(SendMessageResponse)
	callCtx, cancel := c.wrapCall(ctx)
	defer cancel()
	if err := c.conn.Invoke(callCtx, sendMessageMethod, req, resp); err != nil {
		return domainmessages.Message{}, err
	}
	return fromWireMessage(resp.Message), nil
}

// History returns the chat between userID and peerID, oldest first.
func (c *Client) History(ctx context.Context, userID, peerID string) ([]domainmessages.Message, error) {
	resp := new(ListMessagesResponse)
	callCtx, cancel := c.wrapCall(ctx)
	defer cancel()
	if err := c.conn.Invoke(callCtx, listMessagesMethod, &ListMessagesRequest{UserID: userID, PeerID: peerID}, resp); err != nil {
		return nil, err
	}
	return fromWireMessages(resp.Messages), nil
}

// Conversations returns the latest message of each of userID's rooms.
func (c *Client) Conversations(ctx context.Context, userID string) ([]domainmessages.Message, error) {
	resp := new(ListConversationsResponse)
	callCtx, cancel := c.wrapCall(ctx)
	defer cancel()
	if err := c.conn.Invoke(callCtx, listConversationsMethod, &ListConversationsRequest{UserID: userID}, resp); err != nil {
		return nil, err
	}
	return fromWireMessages(resp.Messages), nil
}

func (c *Client) wrapCall(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.callTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func fromWireMessages(msgs []*Message) []domainmessages.Message {
	out := make([]domainmessages.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, fromWireMessage(msg))
	}
	return out
}
