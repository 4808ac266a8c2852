package dto

import (
	"time"

	domainmessages "campusconnect/internal/domain/messages"
)

// ChatMessage is a direct message with both participants resolved.
type ChatMessage struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"room_id"`
	Sender    UserSummary `json:"sender"`
	Receiver  UserSummary `json:"receiver"`
	Text      string      `json:"text"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
}

func MapChatMessage(msg domainmessages.Message, sender, receiver UserSummary) ChatMessage {
	return ChatMessage{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Sender:    sender,
		Receiver:  receiver,
		Text:      msg.Text,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	}
}
