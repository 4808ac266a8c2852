package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "campusconnect/internal/domain/availability"
	"campusconnect/internal/domain/shared/daterange"
)

// AvailabilityStore keeps blocked intervals in the booked_dates array of the
// listing documents.
type AvailabilityStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAvailabilityStore(db *mongo.Database) *AvailabilityStore {
	return &AvailabilityStore{col: db.Collection(listingsCollection), now: time.Now}
}

// HasConflict projects the first interval overlapping r, if any.
func (s *AvailabilityStore) HasConflict(ctx context.Context, listingID string, r daterange.DateRange) (bool, error) {
	overlap := bson.M{
		"start": bson.M{"$lt": timeToTimestamp(r.End)},
		"end":   bson.M{"$gt": timeToTimestamp(r.Start)},
	}
	opts := options.FindOne().SetProjection(bson.M{"booked_dates": bson.M{"$elemMatch": overlap}})
	var doc struct {
		BookedDates []intervalDocument `bson:"booked_dates"`
	}
	if err := s.col.FindOne(ctx, bson.M{"_id": listingID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, domainavailability.ErrListingNotFound
		}
		return false, err
	}
	return len(doc.BookedDates) > 0, nil
}

func (s *AvailabilityStore) Block(ctx context.Context, listingID string, r daterange.DateRange, bookingID string) error {
	interval := intervalDocument{
		Start:     timeToTimestamp(r.Start),
		End:       timeToTimestamp(r.End),
		BookingID: bookingID,
		CreatedAt: timeToTimestamp(s.now()),
	}
	res, err := s.col.UpdateByID(ctx, listingID, bson.M{"$push": bson.M{"booked_dates": interval}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainavailability.ErrListingNotFound
	}
	return nil
}

func (s *AvailabilityStore) Unblock(ctx context.Context, listingID string, bookingID string) error {
	res, err := s.col.UpdateByID(ctx, listingID, bson.M{"$pull": bson.M{"booked_dates": bson.M{"booking_id": bookingID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainavailability.ErrListingNotFound
	}
	return nil
}

func (s *AvailabilityStore) Calendar(ctx context.Context, listingID string) (domainavailability.Calendar, error) {
	opts := options.FindOne().SetProjection(bson.M{"booked_dates": 1})
	var doc struct {
		BookedDates []intervalDocument `bson:"booked_dates"`
	}
	if err := s.col.FindOne(ctx, bson.M{"_id": listingID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.Calendar{}, domainavailability.ErrListingNotFound
		}
		return domainavailability.Calendar{}, err
	}
	return toCalendar(doc.BookedDates), nil
}

var _ domainavailability.Store = (*AvailabilityStore)(nil)
