package booking

import (
	"errors"
	"testing"
	"time"

	"campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
	"campusconnect/internal/domain/shared/money"
)

var testNow = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

func newListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateListingParams{
		ID:          "l1",
		Owner:       "owner",
		Title:       "Calculator",
		Description: "TI-84",
		Category:    "electronics",
		PricePerDay: money.Must(100, ""),
		Location:    "Library",
		Now:         testNow,
	})
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	return l
}

func mayRange(from, to int) daterange.DateRange {
	return daterange.DateRange{
		Start: time.Date(2024, time.May, from, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.May, to, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewBookingComputesTotal(t *testing.T) {
	b, err := NewBooking(CreateParams{
		ID:         "b1",
		Listing:    newListing(t),
		BorrowerID: "borrower",
		Range:      mayRange(1, 4),
		CreatedAt:  testNow,
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("status = %s, want pending", b.Status)
	}
	if b.TotalDays != 3 || b.TotalPrice.Amount != 300 {
		t.Fatalf("got %d days, total %d; want 3 days, 300", b.TotalDays, b.TotalPrice.Amount)
	}
	if b.OwnerID != "owner" {
		t.Fatalf("owner snapshot = %q", b.OwnerID)
	}
	if evs := b.PendingEvents(); len(evs) != 1 || evs[0].EventName() != "booking.requested" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestNewBookingRejections(t *testing.T) {
	unavailable := newListing(t)
	unavailable.IsAvailable = false

	cases := []struct {
		name     string
		listing  *listings.Listing
		borrower string
		r        daterange.DateRange
		want     error
	}{
		{"missing listing", nil, "borrower", mayRange(1, 2), listings.ErrNotFound},
		{"unavailable", unavailable, "borrower", mayRange(1, 2), ErrUnavailable},
		{"self booking", newListing(t), "owner", mayRange(1, 2), ErrSelfBooking},
		{"inverted range", newListing(t), "borrower", mayRange(5, 1), daterange.ErrInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBooking(CreateParams{ID: "b", Listing: tc.listing, BorrowerID: tc.borrower, Range: tc.r, CreatedAt: testNow})
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		role     Role
		want     Status
		effect   Effect
		err      error
	}{
		{StatusPending, StatusConfirmed, RoleOwner, StatusConfirmed, EffectBlock, nil},
		{StatusPending, StatusRejected, RoleOwner, StatusRejected, EffectUnblock, nil},
		{StatusPending, StatusCancelled, RoleBorrower, StatusCancelled, EffectUnblock, nil},
		{StatusConfirmed, StatusCompleted, RoleOwner, StatusCompleted, EffectNone, nil},
		{StatusConfirmed, StatusCancelled, RoleBorrower, StatusCancelled, EffectUnblock, nil},

		{StatusPending, StatusConfirmed, RoleBorrower, StatusPending, EffectNone, ErrUnauthorized},
		{StatusPending, StatusCancelled, RoleOwner, StatusPending, EffectNone, ErrUnauthorized},
		{StatusPending, StatusConfirmed, RoleNone, StatusPending, EffectNone, ErrUnauthorized},
		{StatusCompleted, StatusConfirmed, RoleBorrower, StatusCompleted, EffectNone, ErrUnauthorized},

		{StatusPending, StatusCompleted, RoleOwner, StatusPending, EffectNone, ErrInvalidTransition},
		{StatusCancelled, StatusConfirmed, RoleOwner, StatusCancelled, EffectNone, ErrInvalidTransition},
		{StatusCompleted, StatusCancelled, RoleBorrower, StatusCompleted, EffectNone, ErrInvalidTransition},
		{StatusRejected, StatusRejected, RoleOwner, StatusRejected, EffectNone, ErrInvalidTransition},
		{StatusConfirmed, StatusPending, RoleOwner, StatusConfirmed, EffectNone, ErrInvalidTransition},
		{StatusPending, Status("archived"), RoleOwner, StatusPending, EffectNone, ErrInvalidTransition},
	}
	for _, tc := range cases {
		got, effect, err := Transition(tc.from, tc.to, tc.role)
		if !errors.Is(err, tc.err) {
			t.Errorf("%s->%s as %s: err = %v, want %v", tc.from, tc.to, tc.role, err, tc.err)
			continue
		}
		if got != tc.want || effect != tc.effect {
			t.Errorf("%s->%s as %s: got (%s, %d), want (%s, %d)", tc.from, tc.to, tc.role, got, effect, tc.want, tc.effect)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"confirmed":   StatusConfirmed,
		" Cancelled ": StatusCancelled,
		"REJECTED":    StatusRejected,
	} {
		got, err := ParseStatus(raw)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"", "archived", "pending!"} {
		if _, err := ParseStatus(raw); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("ParseStatus(%q): err = %v", raw, err)
		}
	}
	for _, s := range []Status{StatusRejected, StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Error("pending and confirmed are not terminal")
	}
}

func TestSetStatusRecordsEventAndReviewGate(t *testing.T) {
	b, err := NewBooking(CreateParams{ID: "b1", Listing: newListing(t), BorrowerID: "borrower", Range: mayRange(1, 4), CreatedAt: testNow})
	if err != nil {
		t.Fatal(err)
	}
	b.ClearEvents()

	if err := b.EnsureReviewable(); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("pending booking reviewable: %v", err)
	}
	if _, err := b.SetStatus(StatusConfirmed, "owner", testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SetStatus(StatusCompleted, "owner", testNow); err != nil {
		t.Fatal(err)
	}
	if evs := b.PendingEvents(); len(evs) != 2 || evs[1].EventName() != "booking.completed" {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if err := b.MarkReviewed(testNow); err != nil {
		t.Fatal(err)
	}
	if err := b.MarkReviewed(testNow); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("second review: %v", err)
	}
	if other, ok := b.Counterpart("borrower"); !ok || other != "owner" {
		t.Fatalf("counterpart = %q, %v", other, ok)
	}
}
