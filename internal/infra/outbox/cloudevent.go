package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	appoutbox "campusconnect/internal/app/outbox"
)

const (
	ContentTypeCloudEvents = "application/cloudevents+json"
	eventTypeSuffix        = ".v1"
)

var ErrMalformedEvent = errors.New("outbox: malformed cloud event")

// CloudEvent is the structured-mode envelope published to Kafka.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Recipients      string          `json:"recipients,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// EncodeCloudEvent wraps record. The outbox id becomes the event id so
// consumers can de-duplicate redeliveries.
func EncodeCloudEvent(record appoutbox.EventRecord, source string) ([]byte, error) {
	if !json.Valid(record.Payload) {
		return nil, ErrMalformedEvent
	}
	return json.Marshal(CloudEvent{
		SpecVersion:     "1.0",
		ID:              record.ID,
		Type:            record.Name + eventTypeSuffix,
		Source:          source,
		Subject:         record.Aggregate,
		Time:            record.OccurredAt.UTC(),
		DataContentType: "application/json",
		Recipients:      record.Headers[appoutbox.HeaderRecipients],
		Data:            json.RawMessage(record.Payload),
	})
}

func DecodeCloudEvent(raw []byte) (appoutbox.EventRecord, error) {
	var evt CloudEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return appoutbox.EventRecord{}, err
	}
	if evt.ID == "" || evt.Type == "" {
		return appoutbox.EventRecord{}, ErrMalformedEvent
	}
	headers := map[string]string{}
	if evt.Recipients != "" {
		headers[appoutbox.HeaderRecipients] = evt.Recipients
	}
	return appoutbox.EventRecord{
		ID:         evt.ID,
		Name:       strings.TrimSuffix(evt.Type, eventTypeSuffix),
		Payload:    []byte(evt.Data),
		OccurredAt: evt.Time,
		Aggregate:  evt.Subject,
		Headers:    headers,
	}, nil
}
