package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainevents "campusconnect/internal/domain/events"
	domainlistings "campusconnect/internal/domain/listings"
	domainreviews "campusconnect/internal/domain/reviews"
	domainuser "campusconnect/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. Write
// units run inside a transaction (replica set required); read-only units use a
// plain session so counters such as listing views are applied immediately.
type Factory struct {
	DB *mongo.Database

	listings     *ListingRepository
	availability *AvailabilityStore
	bookings     *BookingRepository
	reviews      *ReviewRepository
	users        *UserRepository
	events       *EventRepository
}

func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		DB:           db,
		listings:     NewListingRepository(db),
		availability: NewAvailabilityStore(db),
		bookings:     NewBookingRepository(db),
		reviews:      NewReviewRepository(db),
		users:        NewUserRepository(db),
		events:       NewEventRepository(db),
	}
}

// Users exposes the repository for callers that work outside a unit, such as sign-in.
func (f *Factory) Users() *UserRepository {
	return f.users
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f == nil || f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	unit := &Unit{factory: f, session: session}
	if opts.ReadOnly {
		return unit, nil
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.inTxn = true
	return unit, nil
}

type Unit struct {
	factory *Factory
	session mongo.Session
	inTxn   bool
}

func (u *Unit) Listings() domainlistings.ListingRepository { return u.factory.listings }

func (u *Unit) Availability() domainavailability.Store { return u.factory.availability }

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.bookings }

func (u *Unit) Reviews() domainreviews.Repository { return u.factory.reviews }

func (u *Unit) Users() domainuser.Repository { return u.factory.users }

func (u *Unit) Events() domainevents.Repository { return u.factory.events }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to repositories using ctx.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.Injector = (*Unit)(nil)
