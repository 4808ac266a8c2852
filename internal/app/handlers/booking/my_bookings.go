package booking

import (
	"context"
	"sort"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainbooking "campusconnect/internal/domain/booking"
)

const listMyBookingsKey = "booking.list_mine"

type ListMyBookingsQuery struct {
	UserID string `validate:"required"`
}

func (q ListMyBookingsQuery) Key() string { return listMyBookingsKey }

func (q ListMyBookingsQuery) ActorID() string { return q.UserID }

// ListMyBookingsHandler returns bookings the caller sent as borrower and
// received as owner, newest first.
type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.MyBookings, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.MyBookings{}, err
	}
	defer unit.Close(ctx)

	sent, err := unit.Bookings().ListByBorrower(ctx, q.UserID)
	if err != nil {
		return dto.MyBookings{}, err
	}
	received, err := unit.Bookings().ListByOwner(ctx, q.UserID)
	if err != nil {
		return dto.MyBookings{}, err
	}
	newestFirst(sent)
	newestFirst(received)

	e := newEnricher(unit)
	sentViews, err := e.bookings(ctx, sent)
	if err != nil {
		return dto.MyBookings{}, err
	}
	receivedViews, err := e.bookings(ctx, received)
	if err != nil {
		return dto.MyBookings{}, err
	}
	return dto.MyBookings{Sent: sentViews, Received: receivedViews}, nil
}

func newestFirst(items []*domainbooking.Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var _ queries.Handler[ListMyBookingsQuery, dto.MyBookings] = (*ListMyBookingsHandler)(nil)
