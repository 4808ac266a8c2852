package memory

import (
	"context"
	"sort"
	"sync"

	domainevents "campusconnect/internal/domain/events"
	sharedevents "campusconnect/internal/domain/shared/events"
)

// EventRepository keeps campus events in memory.
type EventRepository struct {
	mu    sync.RWMutex
	items map[domainevents.EventID]*domainevents.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{items: make(map[domainevents.EventID]*domainevents.Event)}
}

func (r *EventRepository) ByID(ctx context.Context, id domainevents.EventID) (*domainevents.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.items[id]
	if !ok {
		return nil, domainevents.ErrNotFound
	}
	return cloneEvent(event), nil
}

func (r *EventRepository) Save(ctx context.Context, event *domainevents.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.Version++
	r.items[event.ID] = cloneEvent(event)
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id domainevents.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainevents.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *EventRepository) ListActive(ctx context.Context, category domainevents.Category) ([]*domainevents.Event, error) {
	r.mu.RLock()
	out := make([]*domainevents.Event, 0)
	for _, event := range r.items {
		if !event.IsActive || (category != "" && event.Category != category) {
			continue
		}
		out = append(out, cloneEvent(event))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out, nil
}

func cloneEvent(e *domainevents.Event) *domainevents.Event {
	copyEvent := *e
	copyEvent.Interested = append([]string{}, e.Interested...)
	copyEvent.EventRecorder = sharedevents.EventRecorder{}
	return &copyEvent
}

var _ domainevents.Repository = (*EventRepository)(nil)
