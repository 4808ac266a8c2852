package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/uow"
	domainevents "campusconnect/internal/domain/events"
	domainuser "campusconnect/internal/domain/user"
)

const (
	createEventKey    = "events.create"
	toggleInterestKey = "events.toggle_interest"
	deleteEventKey    = "events.delete"
)

type EventPayload struct {
	Title        string `validate:"required,max=200"`
	Description  string `validate:"required,max=2000"`
	Category     string `validate:"omitempty,oneof=lecture workshop fest sports cultural tech other"`
	DateTime     time.Time
	Venue        string `validate:"required"`
	Poster       string `validate:"omitempty,url"`
	MaxAttendees int    `validate:"gte=0"`
}

// CreateEventCommand announces an event with the caller as organizer.
type CreateEventCommand struct {
	OrganizerID string `validate:"required"`
	Payload     EventPayload
}

func (c CreateEventCommand) Key() string { return createEventKey }

func (c CreateEventCommand) ActorID() string { return c.OrganizerID }

type CreateEventHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateEventHandler) Handle(ctx context.Context, cmd CreateEventCommand) (*dto.Event, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	event, err := domainevents.NewEvent(domainevents.CreateParams{
		ID:           domainevents.EventID(uuid.NewString()),
		Organizer:    cmd.OrganizerID,
		Title:        cmd.Payload.Title,
		Description:  cmd.Payload.Description,
		Category:     cmd.Payload.Category,
		DateTime:     cmd.Payload.DateTime,
		Venue:        cmd.Payload.Venue,
		Poster:       cmd.Payload.Poster,
		MaxAttendees: cmd.Payload.MaxAttendees,
		Now:          now(h.Now),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Events().Save(ctx, event); err != nil {
		return nil, err
	}
	view, err := mapWithOrganizer(ctx, unit, event)
	if err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, event.Drain()); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("event created", "event_id", event.ID, "organizer_id", event.Organizer, "category", event.Category)
	}
	return &view, nil
}

type ToggleInterestCommand struct {
	UserID  string `validate:"required"`
	EventID string `validate:"required"`
}

func (c ToggleInterestCommand) Key() string { return toggleInterestKey }

func (c ToggleInterestCommand) ActorID() string { return c.UserID }

type ToggleInterestHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ToggleInterestHandler) Handle(ctx context.Context, cmd ToggleInterestCommand) (*dto.Interest, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	event, err := unit.Events().ByID(ctx, domainevents.EventID(cmd.EventID))
	if err != nil {
		return nil, err
	}
	interested := event.ToggleInterested(cmd.UserID, now(h.Now))
	if err := unit.Events().Save(ctx, event); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Debug("event interest toggled", "event_id", event.ID, "user_id", cmd.UserID, "interested", interested)
	}
	return &dto.Interest{
		Interested:   append([]string{}, event.Interested...),
		Count:        len(event.Interested),
		IsInterested: interested,
	}, nil
}

type DeleteEventCommand struct {
	CallerID string `validate:"required"`
	EventID  string `validate:"required"`
}

func (c DeleteEventCommand) Key() string { return deleteEventKey }

func (c DeleteEventCommand) ActorID() string { return c.CallerID }

type DeleteEventResult struct {
	EventID string `json:"event_id"`
}

// DeleteEventHandler removes an event on behalf of its organizer or an admin.
type DeleteEventHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeleteEventHandler) Handle(ctx context.Context, cmd DeleteEventCommand) (*DeleteEventResult, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	event, err := unit.Events().ByID(ctx, domainevents.EventID(cmd.EventID))
	if err != nil {
		return nil, err
	}
	isAdmin := false
	if !event.OrganizedBy(cmd.CallerID) {
		caller, err := unit.Users().ByID(ctx, domainuser.ID(cmd.CallerID))
		if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		isAdmin = caller != nil && caller.IsAdmin()
	}
	if err := event.EnsureRemovableBy(cmd.CallerID, isAdmin); err != nil {
		return nil, err
	}
	if err := unit.Events().Delete(ctx, event.ID); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("event deleted", "event_id", event.ID, "caller_id", cmd.CallerID)
	}
	return &DeleteEventResult{EventID: string(event.ID)}, nil
}

func mapWithOrganizer(ctx context.Context, unit uow.UnitOfWork, event *domainevents.Event) (dto.Event, error) {
	organizer, err := unit.Users().ByID(ctx, domainuser.ID(event.Organizer))
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.Event{}, err
	}
	return dto.MapEvent(event, dto.MapUserSummary(event.Organizer, organizer)), nil
}

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}

var _ commands.Handler[CreateEventCommand, *dto.Event] = (*CreateEventHandler)(nil)
var _ commands.Handler[ToggleInterestCommand, *dto.Interest] = (*ToggleInterestHandler)(nil)
var _ commands.Handler[DeleteEventCommand, *DeleteEventResult] = (*DeleteEventHandler)(nil)
