package uow

import (
	"context"

	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainevents "campusconnect/internal/domain/events"
	domainlistings "campusconnect/internal/domain/listings"
	domainreviews "campusconnect/internal/domain/reviews"
	domainuser "campusconnect/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.ListingRepository
	Availability() domainavailability.Store
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository
	Users() domainuser.Repository
	Events() domainevents.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// Injector is implemented by units that carry driver state (sessions) in the context.
type Injector interface {
	InjectContext(ctx context.Context) context.Context
}
