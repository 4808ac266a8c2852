package dto

import (
	"time"

	domainevents "campusconnect/internal/domain/events"
)

type Event struct {
	ID              string        `json:"id"`
	Organizer       UserSummary   `json:"organizer"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Category        string        `json:"category"`
	DateTime        time.Time     `json:"date_time"`
	Venue           string        `json:"venue"`
	Poster          string        `json:"poster,omitempty"`
	Interested      []string      `json:"interested"`
	InterestedCount int           `json:"interested_count"`
	InterestedUsers []UserSummary `json:"interested_users,omitempty"`
	MaxAttendees    int           `json:"max_attendees"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type EventCollection struct {
	Items []Event `json:"items"`
	Total int     `json:"total"`
}

// Interest is the answer to an interest toggle. Interested lists every
// interested user; IsInterested is the caller's own state.
type Interest struct {
	Interested   []string `json:"interested"`
	Count        int      `json:"count"`
	IsInterested bool     `json:"is_interested"`
}

func MapEvent(event *domainevents.Event, organizer UserSummary) Event {
	if event == nil {
		return Event{}
	}
	return Event{
		ID:              string(event.ID),
		Organizer:       organizer,
		Title:           event.Title,
		Description:     event.Description,
		Category:        string(event.Category),
		DateTime:        event.DateTime,
		Venue:           event.Venue,
		Poster:          event.Poster,
		Interested:      append([]string{}, event.Interested...),
		InterestedCount: len(event.Interested),
		MaxAttendees:    event.MaxAttendees,
		IsActive:        event.IsActive,
		CreatedAt:       event.CreatedAt,
		UpdatedAt:       event.UpdatedAt,
	}
}
