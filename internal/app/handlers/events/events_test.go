package events

import (
	"context"
	"errors"
	"testing"
	"time"

	domainevents "campusconnect/internal/domain/events"
	domainuser "campusconnect/internal/domain/user"
	"campusconnect/internal/infra/storage/memory"
)

var base = time.Date(2030, time.September, 1, 18, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, store memory.Factory, id string, role domainuser.Role) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@college.edu",
		Name:         id,
		PasswordHash: "x",
		Role:         role,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.UsersRepo.Save(context.Background(), u); err != nil {
		t.Fatal(err)
	}
}

func createEvent(t *testing.T, store memory.Factory, organizer, title, category string, at time.Time) string {
	t.Helper()
	h := &CreateEventHandler{UoWFactory: store, Now: func() time.Time { return base }}
	view, err := h.Handle(context.Background(), CreateEventCommand{
		OrganizerID: organizer,
		Payload: EventPayload{
			Title:       title,
			Description: "Open to all years",
			Category:    category,
			DateTime:    at,
			Venue:       "Main auditorium",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.Organizer.ID != organizer || view.Organizer.Name != organizer || !view.IsActive {
		t.Fatalf("created event: %+v", view)
	}
	return view.ID
}

func TestListEventsSortedAndFiltered(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "org", domainuser.RoleOrganizer)
	ctx := context.Background()

	late := createEvent(t, store, "org", "Robotics workshop", "workshop", base.Add(72*time.Hour))
	early := createEvent(t, store, "org", "Guest lecture", "lecture", base.Add(24*time.Hour))
	hidden := createEvent(t, store, "org", "Cancelled fest", "fest", base.Add(48*time.Hour))

	event, err := store.EventsRepo.ByID(ctx, domainevents.EventID(hidden))
	if err != nil {
		t.Fatal(err)
	}
	event.IsActive = false
	if err := store.EventsRepo.Save(ctx, event); err != nil {
		t.Fatal(err)
	}

	list := &ListEventsHandler{UoWFactory: store}
	all, err := list.Handle(ctx, ListEventsQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 2 || all.Items[0].ID != early || all.Items[1].ID != late {
		t.Fatalf("list = %+v", all.Items)
	}

	workshops, err := list.Handle(ctx, ListEventsQuery{Category: "workshop"})
	if err != nil {
		t.Fatal(err)
	}
	if workshops.Total != 1 || workshops.Items[0].ID != late {
		t.Fatalf("workshops = %+v", workshops.Items)
	}
}

func TestToggleInterestAndGet(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "org", domainuser.RoleStudent)
	seedUser(t, store, "asha", domainuser.RoleStudent)
	seedUser(t, store, "ravi", domainuser.RoleStudent)
	ctx := context.Background()
	id := createEvent(t, store, "org", "Hackathon", "tech", base.Add(24*time.Hour))

	toggle := &ToggleInterestHandler{UoWFactory: store}
	res, err := toggle.Handle(ctx, ToggleInterestCommand{UserID: "asha", EventID: id})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsInterested || res.Count != 1 {
		t.Fatalf("first toggle: %+v", res)
	}
	if res, err = toggle.Handle(ctx, ToggleInterestCommand{UserID: "ravi", EventID: id}); err != nil || res.Count != 2 {
		t.Fatalf("second user: %+v %v", res, err)
	}
	if res, err = toggle.Handle(ctx, ToggleInterestCommand{UserID: "asha", EventID: id}); err != nil || res.IsInterested || res.Count != 1 {
		t.Fatalf("toggle back: %+v %v", res, err)
	}

	get := &GetEventHandler{UoWFactory: store}
	view, err := get.Handle(ctx, GetEventQuery{EventID: id})
	if err != nil {
		t.Fatal(err)
	}
	if view.InterestedCount != 1 || len(view.InterestedUsers) != 1 || view.InterestedUsers[0].Name != "ravi" {
		t.Fatalf("event view: %+v", view)
	}

	if _, err := toggle.Handle(ctx, ToggleInterestCommand{UserID: "asha", EventID: "missing"}); !errors.Is(err, domainevents.ErrNotFound) {
		t.Fatalf("missing event: %v", err)
	}
}

func TestDeleteEventRequiresOrganizerOrAdmin(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "org", domainuser.RoleOrganizer)
	seedUser(t, store, "other", domainuser.RoleStudent)
	seedUser(t, store, "admin", domainuser.RoleAdmin)
	ctx := context.Background()
	del := &DeleteEventHandler{UoWFactory: store}

	first := createEvent(t, store, "org", "Chess meet", "sports", base)
	if _, err := del.Handle(ctx, DeleteEventCommand{CallerID: "other", EventID: first}); !errors.Is(err, domainevents.ErrNotOrganizer) {
		t.Fatalf("stranger delete: %v", err)
	}
	if _, err := del.Handle(ctx, DeleteEventCommand{CallerID: "org", EventID: first}); err != nil {
		t.Fatalf("organizer delete: %v", err)
	}
	if _, err := store.EventsRepo.ByID(ctx, domainevents.EventID(first)); !errors.Is(err, domainevents.ErrNotFound) {
		t.Fatalf("after delete: %v", err)
	}

	second := createEvent(t, store, "org", "Dance night", "cultural", base)
	if _, err := del.Handle(ctx, DeleteEventCommand{CallerID: "admin", EventID: second}); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
