package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/middleware"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/uow"
	domainbooking "campusconnect/internal/domain/booking"
	domainlistings "campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	ListingID       string    `validate:"required"`
	BorrowerID      string    `validate:"required"`
	StartDate       time.Time `validate:"required"`
	EndDate         time.Time `validate:"required"`
	Message         string    `validate:"max=1000"`
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) ActorID() string { return c.BorrowerID }

// IdempotencyKey is scoped to the borrower so keys never collide across users.
func (c RequestBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return c.BorrowerID + ":" + c.IdempotencyKeyV
}

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

var ErrBorrowerRequired = errors.New("booking: borrower required")

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	if cmd.BorrowerID == "" {
		return nil, ErrBorrowerRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.IsAvailable {
		return nil, domainbooking.ErrUnavailable
	}
	if listing.OwnedBy(cmd.BorrowerID) {
		return nil, domainbooking.ErrSelfBooking
	}

	// Conflicts are checked before the range itself, so an inverted range
	// that crosses a blocked interval reports the conflict.
	requested := daterange.DateRange{Start: cmd.StartDate.UTC(), End: cmd.EndDate.UTC()}
	conflict, err := unit.Availability().HasConflict(ctx, string(listing.ID), requested)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domainbooking.ErrDateConflict
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(uuid.NewString()),
		Listing:    listing,
		BorrowerID: cmd.BorrowerID,
		Range:      requested,
		Message:    cmd.Message,
		CreatedAt:  h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	view, err := newEnricher(unit).booking(ctx, booking)
	if err != nil {
		return nil, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested",
			"booking_id", booking.ID,
			"listing_id", booking.ListingID,
			"borrower_id", booking.BorrowerID,
			"total_days", booking.TotalDays,
			"total_price", booking.TotalPrice.Amount,
		)
	}
	return &view, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
var _ middleware.Actor = RequestBookingCommand{}
