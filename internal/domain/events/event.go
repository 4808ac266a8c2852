// Package events models campus events that students announce and mark
// themselves interested in.
package events

import (
	"context"
	"errors"
	"strings"
	"time"

	sharedevents "campusconnect/internal/domain/shared/events"
)

var (
	ErrNotFound            = errors.New("events: not found")
	ErrTitleRequired       = errors.New("events: title is required")
	ErrDescriptionRequired = errors.New("events: description is required")
	ErrVenueRequired       = errors.New("events: venue is required")
	ErrDateTimeRequired    = errors.New("events: date and time are required")
	ErrInvalidCategory     = errors.New("events: invalid category")
	ErrMaxAttendees        = errors.New("events: max attendees cannot be negative")
	ErrOrganizerRequired   = errors.New("events: organizer is required")
	ErrNotOrganizer        = errors.New("events: not organized by caller")
)

type EventID string

type Category string

const (
	CategoryLecture  Category = "lecture"
	CategoryWorkshop Category = "workshop"
	CategoryFest     Category = "fest"
	CategorySports   Category = "sports"
	CategoryCultural Category = "cultural"
	CategoryTech     Category = "tech"
	CategoryOther    Category = "other"
)

type Event struct {
	ID          EventID
	Organizer   string
	Title       string
	Description string
	Category    Category
	DateTime    time.Time
	Venue       string
	Poster      string
	Interested  []string
	// MaxAttendees of zero means unlimited. It is shown to students, not enforced.
	MaxAttendees int
	IsActive     bool
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	sharedevents.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id EventID) (*Event, error)
	Save(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id EventID) error
	// ListActive returns active events, soonest first. An empty category
	// matches all.
	ListActive(ctx context.Context, category Category) ([]*Event, error)
}

type CreateParams struct {
	ID           EventID
	Organizer    string
	Title        string
	Description  string
	Category     string
	DateTime     time.Time
	Venue        string
	Poster       string
	MaxAttendees int
	Now          time.Time
}

func NewEvent(params CreateParams) (*Event, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("events: id is required")
	}
	organizer := strings.TrimSpace(params.Organizer)
	if organizer == "" {
		return nil, ErrOrganizerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	venue := strings.TrimSpace(params.Venue)
	if venue == "" {
		return nil, ErrVenueRequired
	}
	if params.DateTime.IsZero() {
		return nil, ErrDateTimeRequired
	}
	if params.MaxAttendees < 0 {
		return nil, ErrMaxAttendees
	}
	category, err := ParseCategory(params.Category)
	if err != nil {
		return nil, err
	}
	event := &Event{
		ID:           params.ID,
		Organizer:    organizer,
		Title:        title,
		Description:  description,
		Category:     category,
		DateTime:     params.DateTime.UTC(),
		Venue:        venue,
		Poster:       strings.TrimSpace(params.Poster),
		Interested:   []string{},
		MaxAttendees: params.MaxAttendees,
		IsActive:     true,
		CreatedAt:    params.Now.UTC(),
		UpdatedAt:    params.Now.UTC(),
	}
	event.Record(EventCreatedEvent{EventID: event.ID, OrganizerID: organizer, StartsAt: event.DateTime, At: event.CreatedAt})
	return event, nil
}

// ToggleInterested adds userID to the interested list, or removes it when
// already present. It reports whether the user is interested afterwards.
func (e *Event) ToggleInterested(userID string, now time.Time) bool {
	userID = strings.TrimSpace(userID)
	e.UpdatedAt = now.UTC()
	for i, id := range e.Interested {
		if id == userID {
			e.Interested = append(e.Interested[:i:i], e.Interested[i+1:]...)
			return false
		}
	}
	e.Interested = append(e.Interested, userID)
	return true
}

func (e *Event) OrganizedBy(id string) bool {
	return e.Organizer == strings.TrimSpace(id)
}

// EnsureRemovableBy allows the organizer or an admin to delete the event.
func (e *Event) EnsureRemovableBy(callerID string, isAdmin bool) error {
	if isAdmin || e.OrganizedBy(callerID) {
		return nil
	}
	return ErrNotOrganizer
}

func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return CategoryOther, nil
	case CategoryLecture, CategoryWorkshop, CategoryFest, CategorySports, CategoryCultural, CategoryTech, CategoryOther:
		return c, nil
	default:
		return "", ErrInvalidCategory
	}
}
