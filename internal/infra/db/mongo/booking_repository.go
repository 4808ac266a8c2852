package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "campusconnect/internal/domain/booking"
	"campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
	"campusconnect/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the booking guarded by its version.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"borrower_id": borrowerID})
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID          string        `bson:"_id"`
	ListingID   string        `bson:"listing_id"`
	BorrowerID  string        `bson:"borrower_id"`
	OwnerID     string        `bson:"owner_id"`
	Range       rangeDocument `bson:"range"`
	TotalDays   int           `bson:"total_days"`
	PricePerDay moneyDocument `bson:"price_per_day"`
	TotalPrice  moneyDocument `bson:"total_price"`
	Status      string        `bson:"status"`
	Message     string        `bson:"message"`
	ReviewLeft  bool          `bson:"review_left"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	Version     int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:          string(b.ID),
		ListingID:   string(b.ListingID),
		BorrowerID:  b.BorrowerID,
		OwnerID:     b.OwnerID,
		Range:       newRangeDocument(b.Range),
		TotalDays:   b.TotalDays,
		PricePerDay: newMoneyDocument(b.PricePerDay),
		TotalPrice:  newMoneyDocument(b.TotalPrice),
		Status:      string(b.Status),
		Message:     b.Message,
		ReviewLeft:  b.ReviewLeft,
		CreatedAt:   timeToTimestamp(b.CreatedAt),
		UpdatedAt:   timeToTimestamp(b.UpdatedAt),
		Version:     b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:          domainbooking.BookingID(d.ID),
		ListingID:   listings.ListingID(d.ListingID),
		BorrowerID:  d.BorrowerID,
		OwnerID:     d.OwnerID,
		Range:       d.Range.toRange(),
		TotalDays:   d.TotalDays,
		PricePerDay: d.PricePerDay.toMoney(),
		TotalPrice:  d.TotalPrice.toMoney(),
		Status:      domainbooking.Status(d.Status),
		Message:     d.Message,
		ReviewLeft:  d.ReviewLeft,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newRangeDocument(r daterange.DateRange) rangeDocument {
	return rangeDocument{Start: timeToTimestamp(r.Start), End: timeToTimestamp(r.End)}
}

func (d rangeDocument) toRange() daterange.DateRange {
	return daterange.DateRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)}
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	currency := d.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return money.Money{Amount: d.Amount, Currency: currency}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
