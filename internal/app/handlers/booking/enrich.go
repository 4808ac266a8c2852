package booking

import (
	"context"
	"errors"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/uow"
	domainbooking "campusconnect/internal/domain/booking"
	domainlistings "campusconnect/internal/domain/listings"
	domainuser "campusconnect/internal/domain/user"
)

// enricher caches lookups while a batch of bookings is mapped to views.
type enricher struct {
	unit     uow.UnitOfWork
	users    map[string]*domainuser.User
	listings map[domainlistings.ListingID]*domainlistings.Listing
}

func newEnricher(unit uow.UnitOfWork) *enricher {
	return &enricher{
		unit:     unit,
		users:    make(map[string]*domainuser.User),
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (e *enricher) booking(ctx context.Context, b *domainbooking.Booking) (dto.Booking, error) {
	listing, err := e.listing(ctx, b.ListingID)
	if err != nil {
		return dto.Booking{}, err
	}
	borrower, err := e.user(ctx, b.BorrowerID)
	if err != nil {
		return dto.Booking{}, err
	}
	owner, err := e.user(ctx, b.OwnerID)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(
		b,
		dto.MapListingSnapshot(b.ListingID, listing),
		dto.MapUserSummary(b.BorrowerID, borrower),
		dto.MapUserSummary(b.OwnerID, owner),
	), nil
}

func (e *enricher) bookings(ctx context.Context, items []*domainbooking.Booking) ([]dto.Booking, error) {
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		view, err := e.booking(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// listing returns nil for listings deleted after the booking was made.
func (e *enricher) listing(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if cached, ok := e.listings[id]; ok {
		return cached, nil
	}
	listing, err := e.unit.Listings().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainlistings.ErrNotFound) {
		return nil, err
	}
	e.listings[id] = listing
	return listing, nil
}

func (e *enricher) user(ctx context.Context, id string) (*domainuser.User, error) {
	if cached, ok := e.users[id]; ok {
		return cached, nil
	}
	user, err := e.unit.Users().ByID(ctx, domainuser.ID(id))
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	e.users[id] = user
	return user, nil
}
