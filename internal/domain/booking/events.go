package booking

import (
	"time"

	"campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
	"campusconnect/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID
	ListingID  listings.ListingID
	BorrowerID string
	OwnerID    string
	Range      daterange.DateRange
	TotalPrice money.Money
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }
func (e BookingRequested) Recipients() []string  { return []string{e.OwnerID} }

type BookingStatusChanged struct {
	BookingID  BookingID
	ListingID  listings.ListingID
	BorrowerID string
	OwnerID    string
	From       Status
	To         Status
	ChangedBy  string
	At         time.Time
}

func (e BookingStatusChanged) EventName() string     { return "booking." + string(e.To) }
func (e BookingStatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e BookingStatusChanged) OccurredAt() time.Time { return e.At }
func (e BookingStatusChanged) Recipients() []string  { return []string{e.OwnerID, e.BorrowerID} }
