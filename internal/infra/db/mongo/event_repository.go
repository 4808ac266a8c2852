package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainevents "campusconnect/internal/domain/events"
)

type EventRepository struct {
	col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(eventsCollection)}
}

func (r *EventRepository) ByID(ctx context.Context, id domainevents.EventID) (*domainevents.Event, error) {
	var doc eventDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainevents.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the event guarded by its version, so two concurrent interest
// toggles cannot overwrite each other.
func (r *EventRepository) Save(ctx context.Context, e *domainevents.Event) error {
	doc := newEventDocument(e)
	filter := bson.M{"_id": doc.ID, "version": e.Version}
	doc.Version = e.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	e.Version = doc.Version
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id domainevents.EventID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainevents.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListActive(ctx context.Context, category domainevents.Category) ([]*domainevents.Event, error) {
	filter := bson.M{"is_active": true}
	if category != "" {
		filter["category"] = string(category)
	}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainevents.Event, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type eventDocument struct {
	ID           string   `bson:"_id"`
	OrganizerID  string   `bson:"organizer_id"`
	Title        string   `bson:"title"`
	Description  string   `bson:"description"`
	Category     string   `bson:"category"`
	DateTime     int64    `bson:"date_time"`
	Venue        string   `bson:"venue"`
	Poster       string   `bson:"poster"`
	Interested   []string `bson:"interested"`
	MaxAttendees int      `bson:"max_attendees"`
	IsActive     bool     `bson:"is_active"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
	Version      int64    `bson:"version"`
}

func newEventDocument(e *domainevents.Event) eventDocument {
	return eventDocument{
		ID:           string(e.ID),
		OrganizerID:  e.Organizer,
		Title:        e.Title,
		Description:  e.Description,
		Category:     string(e.Category),
		DateTime:     timeToTimestamp(e.DateTime),
		Venue:        e.Venue,
		Poster:       e.Poster,
		Interested:   append([]string{}, e.Interested...),
		MaxAttendees: e.MaxAttendees,
		IsActive:     e.IsActive,
		CreatedAt:    timeToTimestamp(e.CreatedAt),
		UpdatedAt:    timeToTimestamp(e.UpdatedAt),
		Version:      e.Version,
	}
}

func (d eventDocument) toAggregate() *domainevents.Event {
	return &domainevents.Event{
		ID:           domainevents.EventID(d.ID),
		Organizer:    d.OrganizerID,
		Title:        d.Title,
		Description:  d.Description,
		Category:     domainevents.Category(d.Category),
		DateTime:     timestampToTime(d.DateTime),
		Venue:        d.Venue,
		Poster:       d.Poster,
		Interested:   append([]string{}, d.Interested...),
		MaxAttendees: d.MaxAttendees,
		IsActive:     d.IsActive,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}

var _ domainevents.Repository = (*EventRepository)(nil)
