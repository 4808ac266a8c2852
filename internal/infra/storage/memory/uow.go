package memory

import (
	"context"
	"errors"

	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainevents "campusconnect/internal/domain/events"
	domainlistings "campusconnect/internal/domain/listings"
	domainreviews "campusconnect/internal/domain/reviews"
	domainuser "campusconnect/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary. Units
// provide no isolation and Rollback does not undo writes.
type Factory struct {
	ListingsRepo     domainlistings.ListingRepository
	AvailabilityRepo domainavailability.Store
	BookingRepo      domainbooking.Repository
	ReviewsRepo      domainreviews.Repository
	UsersRepo        domainuser.Repository
	EventsRepo       domainevents.Repository
}

// NewStore builds a Factory over fresh repositories.
func NewStore() Factory {
	listings := NewListingRepository()
	return Factory{
		ListingsRepo:     listings,
		AvailabilityRepo: NewAvailabilityStore(listings),
		BookingRepo:      NewBookingRepository(),
		ReviewsRepo:      NewReviewsRepository(),
		UsersRepo:        NewUserRepository(),
		EventsRepo:       NewEventRepository(),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.AvailabilityRepo == nil || f.BookingRepo == nil || f.ReviewsRepo == nil || f.UsersRepo == nil || f.EventsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Listings() domainlistings.ListingRepository { return u.factory.ListingsRepo }

func (u *Unit) Availability() domainavailability.Store { return u.factory.AvailabilityRepo }

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingRepo }

func (u *Unit) Reviews() domainreviews.Repository { return u.factory.ReviewsRepo }

func (u *Unit) Users() domainuser.Repository { return u.factory.UsersRepo }

func (u *Unit) Events() domainevents.Repository { return u.factory.EventsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
