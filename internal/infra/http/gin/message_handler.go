package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/uow"
	domainmessages "campusconnect/internal/domain/messages"
	domainuser "campusconnect/internal/domain/user"
	"campusconnect/internal/infra/messaging"
)

// MessageHandler bridges the chat routes with the messaging gRPC client.
type MessageHandler struct {
	Messaging  *messaging.Client
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

type sendMessageRequest struct {
	ReceiverID      string `json:"receiverId"`
	SnakeReceiverID string `json:"receiver_id"`
	Text            string `json:"text"`
}

// Send stores a message from the caller to receiverId.
func (h MessageHandler) Send(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Messaging == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	receiverID := strings.TrimSpace(either(req.ReceiverID, req.SnakeReceiverID))
	if receiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId is required"})
		return
	}

	users, err := h.resolver(c.Request.Context())
	if err != nil {
		h.logError("begin uow failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot load users"})
		return
	}
	defer users.close(c.Request.Context())
	if !users.exists(c.Request.Context(), receiverID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	msg, err := h.Messaging.Send(c.Request.Context(), p.ID, receiverID, req.Text)
	if err != nil {
		h.respondMessagingError(c, err, "send message", "user_id", p.ID, "receiver_id", receiverID)
		return
	}
	c.JSON(http.StatusCreated, users.view(c.Request.Context(), msg))
}

// History returns the caller's chat with :userId, oldest first.
func (h MessageHandler) History(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Messaging == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	peerID := strings.TrimSpace(c.Param("userId"))
	history, err := h.Messaging.History(c.Request.Context(), p.ID, peerID)
	if err != nil {
		h.respondMessagingError(c, err, "list messages", "user_id", p.ID, "peer_id", peerID)
		return
	}
	h.respondMessages(c, history)
}

// Conversations returns the latest message of every chat the caller is in.
func (h MessageHandler) Conversations(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Messaging == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	latest, err := h.Messaging.Conversations(c.Request.Context(), p.ID)
	if err != nil {
		h.respondMessagingError(c, err, "list conversations", "user_id", p.ID)
		return
	}
	h.respondMessages(c, latest)
}

func (h MessageHandler) respondMessages(c *gin.Context, msgs []domainmessages.Message) {
	users, err := h.resolver(c.Request.Context())
	if err != nil {
		h.logError("begin uow failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot load users"})
		return
	}
	defer users.close(c.Request.Context())
	items := make([]dto.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, users.view(c.Request.Context(), msg))
	}
	c.JSON(http.StatusOK, items)
}

func (h MessageHandler) respondMessagingError(c *gin.Context, err error, action string, attrs ...any) {
	if h.Logger != nil {
		h.Logger.Error("messaging call failed", append([]any{"action", action, "error", err}, attrs...)...)
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.NotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		case codes.InvalidArgument:
			c.JSON(http.StatusBadRequest, gin.H{"error": st.Message()})
			return
		case codes.Unauthenticated, codes.PermissionDenied:
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		case codes.Unavailable, codes.DeadlineExceeded:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
			return
		}
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "messaging unavailable"})
}

func (h MessageHandler) logError(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
}

// userResolver turns participant ids into summaries through one read-only
// unit. Without a factory it degrades to bare ids.
type userResolver struct {
	unit  uow.UnitOfWork
	known map[string]*domainuser.User
}

func (h MessageHandler) resolver(ctx context.Context) (*userResolver, error) {
	r := &userResolver{known: make(map[string]*domainuser.User)}
	if h.UoWFactory == nil {
		return r, nil
	}
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	r.unit = unit
	return r, nil
}

func (r *userResolver) close(ctx context.Context) {
	if r.unit != nil {
		_ = r.unit.Rollback(ctx)
	}
}

func (r *userResolver) lookup(ctx context.Context, id string) *domainuser.User {
	if user, ok := r.known[id]; ok || r.unit == nil {
		return user
	}
	user, err := r.unit.Users().ByID(ctx, domainuser.ID(id))
	if err != nil {
		user = nil
	}
	r.known[id] = user
	return user
}

func (r *userResolver) exists(ctx context.Context, id string) bool {
	if r.unit == nil {
		return true
	}
	_, err := r.unit.Users().ByID(ctx, domainuser.ID(id))
	return !errors.Is(err, domainuser.ErrNotFound)
}

func (r *userResolver) view(ctx context.Context, msg domainmessages.Message) dto.ChatMessage {
	sender := dto.MapUserSummary(msg.SenderID, r.lookup(ctx, msg.SenderID))
	receiver := dto.MapUserSummary(msg.ReceiverID, r.lookup(ctx, msg.ReceiverID))
	return dto.MapChatMessage(msg, sender, receiver)
}

var _ MessageHTTP = (*MessageHandler)(nil)
