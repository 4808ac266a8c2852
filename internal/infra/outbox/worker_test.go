package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	appoutbox "campusconnect/internal/app/outbox"
)

type fakeSource struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]string
}

func (s *fakeSource) Claim(context.Context, string) (*EventDocument, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	doc := s.docs[0]
	s.docs = s.docs[1:]
	return doc, nil
}

func (s *fakeSource) MarkSent(_ context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeSource) MarkFailed(_ context.Context, id string, _ time.Time, msg string) error {
	s.failed[id] = msg
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func doc(id, name string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"booking_id":"b1"}`),
		OccurredAt: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		Aggregate:  "b1",
		Headers:    map[string]string{appoutbox.HeaderRecipients: "owner,borrower"},
	}
}

func TestTopicFor(t *testing.T) {
	cases := map[string]string{
		"booking.confirmed": "dev.booking.events.v1",
		"review.submitted":  "dev.review.events.v1",
		"listing.created":   "dev.listing.events.v1",
		"plain":             "dev.plain.events.v1",
	}
	for name, want := range cases {
		if got := TopicFor("dev.", name); got != want {
			t.Errorf("TopicFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWorkerRelaysAsCloudEvents(t *testing.T) {
	src := &fakeSource{docs: []*EventDocument{doc("e1", "booking.requested"), doc("e2", "review.submitted")}, failed: map[string]string{}}
	prod := &fakeProducer{}
	w := &Worker{Store: src, Producer: prod}

	if err := w.drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(prod.out) != 2 || len(src.sent) != 2 {
		t.Fatalf("published %d, sent %d", len(prod.out), len(src.sent))
	}
	first := prod.out[0]
	if first.topic != "booking.events.v1" || first.key != "b1" {
		t.Fatalf("unexpected routing: %+v", first)
	}
	if first.headers["content-type"] != ContentTypeCloudEvents || first.headers[appoutbox.HeaderRecipients] != "owner,borrower" {
		t.Fatalf("headers: %v", first.headers)
	}

	record, err := DecodeCloudEvent(first.payload)
	if err != nil {
		t.Fatal(err)
	}
	if record.ID != "e1" || record.Name != "booking.requested" || record.Aggregate != "b1" {
		t.Fatalf("decoded: %+v", record)
	}
	if got := record.Recipients(); len(got) != 2 || got[0] != "owner" {
		t.Fatalf("recipients: %v", got)
	}
}

func TestWorkerMarksFailures(t *testing.T) {
	src := &fakeSource{docs: []*EventDocument{doc("e1", "booking.requested")}, failed: map[string]string{}}
	w := &Worker{Store: src, Producer: &fakeProducer{fail: true}, Backoff: []time.Duration{time.Second}}

	processed, err := w.ProcessOnce(context.Background())
	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}
	if src.failed["e1"] != "broker down" || len(src.sent) != 0 {
		t.Fatalf("failed=%v sent=%v", src.failed, src.sent)
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeCloudEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeCloudEvent([]byte(`{"specversion":"1.0"}`)); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("got %v", err)
	}
	if _, err := EncodeCloudEvent(appoutbox.EventRecord{ID: "x", Payload: []byte("not json")}, ""); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("got %v", err)
	}
}
