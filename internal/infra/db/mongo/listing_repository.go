package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "campusconnect/internal/domain/availability"
	domainlistings "campusconnect/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingsCollection)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the editable fields. booked_dates and views are only written
// on insert; afterwards the availability store and IncrementViews own them.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{
		"$set": bson.M{
			"owner_id":      doc.OwnerID,
			"title":         doc.Title,
			"description":   doc.Description,
			"category":      doc.Category,
			"price_per_day": doc.PricePerDay,
			"photos":        doc.Photos,
			"location":      doc.Location,
			"condition":     doc.Condition,
			"is_available":  doc.IsAvailable,
			"created_at":    doc.CreatedAt,
			"updated_at":    doc.UpdatedAt,
			"version":       doc.Version,
		},
		"$setOnInsert": bson.M{
			"booked_dates": []intervalDocument{},
			"views":        int64(0),
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	params = params.Normalized()
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))
	cur, err := r.col.Find(ctx, searchFilter(params), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainlistings.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.UpdateByID(ctx, string(id), bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// searchFilter mirrors SearchParams.Matches.
func searchFilter(p domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if p.Owner != "" {
		filter["owner_id"] = string(p.Owner)
	}
	if p.Category != "" {
		filter["category"] = string(p.Category)
	}
	if p.OnlyAvailable {
		filter["is_available"] = true
	}
	price := bson.M{}
	if p.PriceMin > 0 {
		price["$gte"] = p.PriceMin
	}
	if p.PriceMax > 0 {
		price["$lte"] = p.PriceMax
	}
	if len(price) > 0 {
		filter["price_per_day.amount"] = price
	}
	if words := strings.Fields(p.Text); len(words) > 0 {
		or := make(bson.A, 0, len(words)*3)
		for _, word := range words {
			pattern := bson.M{"$regex": regexp.QuoteMeta(word), "$options": "i"}
			or = append(or,
				bson.M{"title": pattern},
				bson.M{"description": pattern},
				bson.M{"category": pattern},
			)
		}
		filter["$or"] = or
	}
	return filter
}

type listingDocument struct {
	ID          string             `bson:"_id"`
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	PricePerDay moneyDocument      `bson:"price_per_day"`
	Photos      []string           `bson:"photos"`
	Location    string             `bson:"location"`
	Condition   string             `bson:"condition"`
	IsAvailable bool               `bson:"is_available"`
	BookedDates []intervalDocument `bson:"booked_dates"`
	Views       int64              `bson:"views"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
	Version     int64              `bson:"version"`
}

type intervalDocument struct {
	Start     int64  `bson:"start"`
	End       int64  `bson:"end"`
	BookingID string `bson:"booking_id"`
	CreatedAt int64  `bson:"created_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		OwnerID:     string(l.Owner),
		Title:       l.Title,
		Description: l.Description,
		Category:    string(l.Category),
		PricePerDay: newMoneyDocument(l.PricePerDay),
		Photos:      append([]string{}, l.Photos...),
		Location:    l.Location,
		Condition:   string(l.Condition),
		IsAvailable: l.IsAvailable,
		Views:       l.Views,
		CreatedAt:   timeToTimestamp(l.CreatedAt),
		UpdatedAt:   timeToTimestamp(l.UpdatedAt),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		Category:    domainlistings.Category(d.Category),
		PricePerDay: d.PricePerDay.toMoney(),
		Photos:      append([]string(nil), d.Photos...),
		Location:    d.Location,
		Condition:   domainlistings.Condition(d.Condition),
		IsAvailable: d.IsAvailable,
		BookedDates: toCalendar(d.BookedDates),
		Views:       d.Views,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func toCalendar(docs []intervalDocument) domainavailability.Calendar {
	calendar := domainavailability.Calendar{}
	for _, doc := range docs {
		calendar.Intervals = append(calendar.Intervals, domainavailability.Interval{
			Range:     rangeDocument{Start: doc.Start, End: doc.End}.toRange(),
			BookingID: doc.BookingID,
			CreatedAt: timestampToTime(doc.CreatedAt),
		})
	}
	return calendar
}

var _ domainlistings.ListingRepository = (*ListingRepository)(nil)
