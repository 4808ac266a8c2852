package memory

import (
	"context"
	"sync"

	appoutbox "campusconnect/internal/app/outbox"
)

// Sink receives flushed records, typically a notifications dispatcher.
type Sink func(ctx context.Context, record appoutbox.EventRecord) error

// Outbox buffers records until Flush hands them to Sink in order. Without a
// sink they are dropped.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	sink    Sink
}

func NewOutbox(sink Sink) *Outbox {
	return &Outbox{sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

// Flush delivers the buffer. A failing record stays queued with the ones after it.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.sink == nil {
		return nil
	}
	for i, record := range pending {
		if err := o.sink(ctx, record); err != nil {
			o.mu.Lock()
			o.records = append(append([]appoutbox.EventRecord(nil), pending[i:]...), o.records...)
			o.mu.Unlock()
			return err
		}
	}
	return nil
}

// Pending returns a copy of the records not yet flushed.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
