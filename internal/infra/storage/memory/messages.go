package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domainmessages "campusconnect/internal/domain/messages"
)

// MessageStore keeps chat rooms in memory. It backs the messaging service
// when no Scylla cluster is configured.
type MessageStore struct {
	mu    sync.RWMutex
	rooms map[string][]domainmessages.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{rooms: make(map[string][]domainmessages.Message)}
}

func (s *MessageStore) Append(ctx context.Context, msg domainmessages.Message) (domainmessages.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.rooms[msg.RoomID] = append(s.rooms[msg.RoomID], msg)
	s.mu.Unlock()
	return msg, nil
}

func (s *MessageStore) History(ctx context.Context, roomID string) ([]domainmessages.Message, error) {
	s.mu.RLock()
	out := append([]domainmessages.Message{}, s.rooms[roomID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MessageStore) LatestPerRoom(ctx context.Context, userID string) ([]domainmessages.Message, error) {
	s.mu.RLock()
	out := make([]domainmessages.Message, 0)
	for _, room := range s.rooms {
		if len(room) == 0 || !room[0].Involves(userID) {
			continue
		}
		latest := room[0]
		for _, msg := range room[1:] {
			if !msg.CreatedAt.Before(latest.CreatedAt) {
				latest = msg
			}
		}
		out = append(out, latest)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ domainmessages.Store = (*MessageStore)(nil)
