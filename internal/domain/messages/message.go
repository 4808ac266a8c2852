// Package messages holds direct messages between two students. Both
// directions of a chat share one room.
package messages

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrSenderRequired   = errors.New("messages: sender is required")
	ErrReceiverRequired = errors.New("messages: receiver is required")
	ErrTextRequired     = errors.New("messages: text is required")
	ErrUnavailable      = errors.New("messages: messaging unavailable")
)

type Message struct {
	ID         string
	RoomID     string
	SenderID   string
	ReceiverID string
	Text       string
	Read       bool
	CreatedAt  time.Time
}

// Store persists messages by room.
type Store interface {
	// Append stores msg and returns it with its assigned id.
	Append(ctx context.Context, msg Message) (Message, error)
	// History lists a room oldest first.
	History(ctx context.Context, roomID string) ([]Message, error)
	// LatestPerRoom lists the newest message of every room userID takes
	// part in, newest first.
	LatestPerRoom(ctx context.Context, userID string) ([]Message, error)
}

// RoomID names the room shared by two users regardless of who writes first.
func RoomID(a, b string) string {
	ids := []string{strings.TrimSpace(a), strings.TrimSpace(b)}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

func New(senderID, receiverID, text string, now time.Time) (Message, error) {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return Message{}, ErrSenderRequired
	}
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return Message{}, ErrReceiverRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrTextRequired
	}
	return Message{
		RoomID:     RoomID(senderID, receiverID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  now.UTC(),
	}, nil
}

// Involves reports whether userID sent or received the message.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Peer is the other participant from userID's point of view.
func (m Message) Peer(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
