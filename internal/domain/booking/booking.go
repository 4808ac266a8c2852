package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
	"campusconnect/internal/domain/shared/events"
	"campusconnect/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrUnavailable       = errors.New("booking: item not available")
	ErrSelfBooking       = errors.New("booking: cannot book your own item")
	ErrDateConflict      = errors.New("booking: item already booked for those dates")
	ErrUnauthorized      = errors.New("booking: not authorized")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrNotCompleted      = errors.New("booking: not completed yet")
	ErrAlreadyReviewed   = errors.New("booking: review already submitted")
)

type BookingID string

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	BorrowerID  string
	// OwnerID is copied from the listing at creation and never re-read.
	OwnerID     string
	Range       daterange.DateRange
	TotalDays   int
	PricePerDay money.Money
	TotalPrice  money.Money
	Status      Status
	Message     string
	ReviewLeft  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByBorrower(ctx context.Context, borrowerID string) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	Listing    *listings.Listing
	BorrowerID string
	Range      daterange.DateRange
	Message    string
	CreatedAt  time.Time
}

// NewBooking builds a pending booking. Date conflicts are checked by the caller
// against the availability store.
func NewBooking(params CreateParams) (*Booking, error) {
	listing := params.Listing
	if listing == nil {
		return nil, listings.ErrNotFound
	}
	borrower := strings.TrimSpace(params.BorrowerID)
	if borrower == "" {
		return nil, errors.New("booking: borrower id required")
	}
	if !listing.IsAvailable {
		return nil, ErrUnavailable
	}
	if listing.OwnedBy(borrower) {
		return nil, ErrSelfBooking
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	days := params.Range.Days()
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ListingID:   listing.ID,
		BorrowerID:  borrower,
		OwnerID:     string(listing.Owner),
		Range:       params.Range,
		TotalDays:   days,
		PricePerDay: listing.PricePerDay,
		TotalPrice:  listing.PricePerDay.Multiply(int64(days)),
		Status:      StatusPending,
		Message:     strings.TrimSpace(params.Message),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		BorrowerID: b.BorrowerID,
		OwnerID:    b.OwnerID,
		Range:      b.Range,
		TotalPrice: b.TotalPrice,
		At:         now,
	})
	return b, nil
}

func (b *Booking) RoleOf(userID string) Role {
	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return RoleNone
	case userID == b.OwnerID:
		return RoleOwner
	case userID == b.BorrowerID:
		return RoleBorrower
	default:
		return RoleNone
	}
}

// SetStatus applies a requested status on behalf of callerID and returns the
// availability effect the caller must carry out.
func (b *Booking) SetStatus(requested Status, callerID string, now time.Time) (Effect, error) {
	role := b.RoleOf(callerID)
	next, effect, err := Transition(b.Status, requested, role)
	if err != nil {
		return EffectNone, err
	}
	previous := b.Status
	b.Status = next
	b.UpdatedAt = now.UTC()
	b.Record(BookingStatusChanged{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		BorrowerID: b.BorrowerID,
		OwnerID:    b.OwnerID,
		From:       previous,
		To:         next,
		ChangedBy:  role.String(),
		At:         b.UpdatedAt,
	})
	return effect, nil
}

// Counterpart returns the other party of the booking for a participant.
func (b *Booking) Counterpart(userID string) (string, bool) {
	switch b.RoleOf(userID) {
	case RoleOwner:
		return b.BorrowerID, true
	case RoleBorrower:
		return b.OwnerID, true
	default:
		return "", false
	}
}

// EnsureReviewable reports whether a review may be attached right now.
func (b *Booking) EnsureReviewable() error {
	if b.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if b.ReviewLeft {
		return ErrAlreadyReviewed
	}
	return nil
}

func (b *Booking) MarkReviewed(now time.Time) error {
	if err := b.EnsureReviewable(); err != nil {
		return err
	}
	b.ReviewLeft = true
	b.UpdatedAt = now.UTC()
	return nil
}
