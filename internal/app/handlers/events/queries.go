package events

import (
	"context"
	"errors"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainevents "campusconnect/internal/domain/events"
	domainuser "campusconnect/internal/domain/user"
)

const (
	listEventsKey = "events.list"
	getEventKey   = "events.get"
)

// ListEventsQuery lists active events, soonest first.
type ListEventsQuery struct {
	Category string `validate:"omitempty,oneof=lecture workshop fest sports cultural tech other"`
}

func (q ListEventsQuery) Key() string { return listEventsKey }

type ListEventsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListEventsHandler) Handle(ctx context.Context, q ListEventsQuery) (dto.EventCollection, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.EventCollection{}, err
	}
	defer unit.Close(ctx)

	found, err := unit.Events().ListActive(ctx, domainevents.Category(q.Category))
	if err != nil {
		return dto.EventCollection{}, err
	}
	users := newUserCache(unit)
	items := make([]dto.Event, 0, len(found))
	for _, event := range found {
		organizer, err := users.summary(ctx, event.Organizer)
		if err != nil {
			return dto.EventCollection{}, err
		}
		items = append(items, dto.MapEvent(event, organizer))
	}
	return dto.EventCollection{Items: items, Total: len(items)}, nil
}

// GetEventQuery reads one event with the interested users resolved.
type GetEventQuery struct {
	EventID string `validate:"required"`
}

func (q GetEventQuery) Key() string { return getEventKey }

type GetEventHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetEventHandler) Handle(ctx context.Context, q GetEventQuery) (dto.Event, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Event{}, err
	}
	defer unit.Close(ctx)

	event, err := unit.Events().ByID(ctx, domainevents.EventID(q.EventID))
	if err != nil {
		return dto.Event{}, err
	}
	users := newUserCache(unit)
	organizer, err := users.summary(ctx, event.Organizer)
	if err != nil {
		return dto.Event{}, err
	}
	view := dto.MapEvent(event, organizer)
	view.InterestedUsers = make([]dto.UserSummary, 0, len(event.Interested))
	for _, id := range event.Interested {
		summary, err := users.summary(ctx, id)
		if err != nil {
			return dto.Event{}, err
		}
		view.InterestedUsers = append(view.InterestedUsers, summary)
	}
	return view, nil
}

type userCache struct {
	unit  uow.UnitOfWork
	known map[string]dto.UserSummary
}

func newUserCache(unit uow.UnitOfWork) *userCache {
	return &userCache{unit: unit, known: make(map[string]dto.UserSummary)}
}

func (c *userCache) summary(ctx context.Context, id string) (dto.UserSummary, error) {
	if summary, ok := c.known[id]; ok {
		return summary, nil
	}
	user, err := c.unit.Users().ByID(ctx, domainuser.ID(id))
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.UserSummary{}, err
	}
	summary := dto.MapUserSummary(id, user)
	c.known[id] = summary
	return summary, nil
}

var _ queries.Handler[ListEventsQuery, dto.EventCollection] = (*ListEventsHandler)(nil)
var _ queries.Handler[GetEventQuery, dto.Event] = (*GetEventHandler)(nil)
