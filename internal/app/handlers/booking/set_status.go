package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
)

const setBookingStatusKey = "booking.set_status"

type SetBookingStatusCommand struct {
	BookingID string `validate:"required"`
	CallerID  string `validate:"required"`
	Status    string `validate:"required"`
}

func (c SetBookingStatusCommand) Key() string { return setBookingStatusKey }

func (c SetBookingStatusCommand) ActorID() string { return c.CallerID }

// SetBookingStatusHandler drives the booking state machine and applies the
// resulting availability effect. A confirmation re-checks conflicts before
// blocking; the command pipeline holds the listing lock from ConfirmLock
// around the whole unit of work.
type SetBookingStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *SetBookingStatusHandler) Handle(ctx context.Context, cmd SetBookingStatusCommand) (*dto.Booking, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	requested, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	listingID := string(booking.ListingID)

	if requested == domainbooking.StatusConfirmed &&
		booking.Status == domainbooking.StatusPending &&
		booking.RoleOf(cmd.CallerID) == domainbooking.RoleOwner {
		conflict, err := unit.Availability().HasConflict(ctx, listingID, booking.Range)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, domainbooking.ErrDateConflict
		}
	}

	previous := booking.Status
	effect, err := booking.SetStatus(requested, cmd.CallerID, h.now())
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	switch effect {
	case domainbooking.EffectBlock:
		if err := unit.Availability().Block(ctx, listingID, booking.Range, string(booking.ID)); err != nil {
			return nil, err
		}
	case domainbooking.EffectUnblock:
		if err := unit.Availability().Unblock(ctx, listingID, string(booking.ID)); err != nil && !errors.Is(err, domainavailability.ErrListingNotFound) {
			return nil, err
		}
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
		h.Logger.Info("booking status changed",
			"booking_id", booking.ID,
			"listing_id", booking.ListingID,
			"from", previous,
			"to", booking.Status,
			"caller_id", cmd.CallerID,
		)
	}
	return &view, nil
}

func (h *SetBookingStatusHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[SetBookingStatusCommand, *dto.Booking] = (*SetBookingStatusHandler)(nil)

// ConfirmLock keys confirmations by listing so that the conflict re-check,
// the block and the commit of one confirmation finish before the next starts.
type ConfirmLock struct {
	UoWFactory uow.UoWFactory
}

func (l ConfirmLock) LockKey(ctx context.Context, cmd commands.Command) (string, error) {
	c, ok := cmd.(SetBookingStatusCommand)
	if !ok {
		return "", nil
	}
	if status, err := domainbooking.ParseStatus(c.Status); err != nil || status != domainbooking.StatusConfirmed {
		return "", nil
	}
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, l.UoWFactory)
	if err != nil {
		return "", err
	}
	defer unit.Close(ctx)
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(c.BookingID))
	if errors.Is(err, domainbooking.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return "listing:" + string(booking.ListingID), nil
}
