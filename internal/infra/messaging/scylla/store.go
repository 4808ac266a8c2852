package scylla

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/gocql/gocql"

	domainmessages "campusconnect/internal/domain/messages"
)

// Store keeps each room as one partition of messages_by_room and tracks
// the newest message per participant in rooms_by_user.
type Store struct {
	session *gocql.Session
	logger  *slog.Logger
}

func NewStore(session *gocql.Session, logger *slog.Logger) *Store {
	return &Store{session: session, logger: logger}
}

func (s *Store) Append(ctx context.Context, msg domainmessages.Message) (domainmessages.Message, error) {
	if s.session == nil {
		return domainmessages.Message{}, domainmessages.ErrUnavailable
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	messageID := gocql.UUIDFromTime(msg.CreatedAt)
	msg.ID = messageID.String()

	if err := s.session.
		Query(`INSERT INTO messages_by_room (room_id, message_id, sender_id, receiver_id, text, read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.RoomID, messageID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Read, msg.CreatedAt).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec(); err != nil {
		return domainmessages.Message{}, err
	}

	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, userID := range []string{msg.SenderID, msg.ReceiverID} {
		batch.Query(`UPDATE rooms_by_user SET last_message_id = ?, last_sender_id = ?, last_receiver_id = ?, last_text = ?, last_read = ?, last_message_at = ? WHERE user_id = ? AND room_id = ?`,
			messageID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Read, msg.CreatedAt, userID, msg.RoomID)
	}
	// the message itself is stored; a stale room index only delays the inbox
	if err := s.session.ExecuteBatch(batch); err != nil && s.logger != nil {
		s.logger.Warn("failed to update room index", "error", err, "room_id", msg.RoomID)
	}
	return msg, nil
}

func (s *Store) History(ctx context.Context, roomID string) ([]domainmessages.Message, error) {
	if s.session == nil {
		return nil, domainmessages.ErrUnavailable
	}
	iter := s.session.
		Query(`SELECT message_id, sender_id, receiver_id, text, read, created_at FROM messages_by_room WHERE room_id = ?`, roomID).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()

	var (
		messageID  gocql.UUID
		senderID   string
		receiverID string
		text       string
		read       bool
		createdAt  time.Time
	)
	out := make([]domainmessages.Message, 0)
	for iter.Scan(&messageID, &senderID, &receiverID, &text, &read, &createdAt) {
		out = append(out, domainmessages.Message{
			ID:         messageID.String(),
			RoomID:     roomID,
			SenderID:   senderID,
			ReceiverID: receiverID,
			Text:       text,
			Read:       read,
			CreatedAt:  createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) LatestPerRoom(ctx context.Context, userID string) ([]domainmessages.Message, error) {
	if s.session == nil {
		return nil, domainmessages.ErrUnavailable
	}
	iter := s.session.
		Query(`SELECT room_id, last_message_id, last_sender_id, last_receiver_id, last_text, last_read, last_message_at FROM rooms_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()

	var (
		roomID     string
		messageID  gocql.UUID
		senderID   string
		receiverID string
		text       string
		read       bool
		lastAt     time.Time
	)
	out := make([]domainmessages.Message, 0)
	for iter.Scan(&roomID, &messageID, &senderID, &receiverID, &text, &read, &lastAt) {
		out = append(out, domainmessages.Message{
			ID:         messageID.String(),
			RoomID:     roomID,
			SenderID:   senderID,
			ReceiverID: receiverID,
			Text:       text,
			Read:       read,
			CreatedAt:  lastAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(msgs []domainmessages.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].RoomID < msgs[j].RoomID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
}

var _ domainmessages.Store = (*Store)(nil)
