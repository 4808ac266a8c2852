package availability

import (
	"context"
	"errors"
	"time"

	"campusconnect/internal/domain/shared/daterange"
)

var (
	ErrListingNotFound = errors.New("availability: listing not found")
	ErrLockNotAcquired = errors.New("availability: listing is locked by another request")
)

// Interval is a date range committed to a confirmed booking.
type Interval struct {
	Range     daterange.DateRange
	BookingID string
	CreatedAt time.Time
}

// Calendar is the set of blocked intervals of one listing. Intervals are never
// merged; the overlap test does not depend on fragmentation.
type Calendar struct {
	Intervals []Interval
}

func (c Calendar) HasConflict(r daterange.DateRange) bool {
	for _, interval := range c.Intervals {
		if interval.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

func (c *Calendar) Block(r daterange.DateRange, bookingID string, now time.Time) {
	c.Intervals = append(c.Intervals, Interval{Range: r, BookingID: bookingID, CreatedAt: now.UTC()})
}

// Unblock drops every interval tagged with bookingID and reports whether any was found.
func (c *Calendar) Unblock(bookingID string) bool {
	kept := c.Intervals[:0]
	removed := false
	for _, interval := range c.Intervals {
		if interval.BookingID == bookingID {
			removed = true
			continue
		}
		kept = append(kept, interval)
	}
	c.Intervals = kept
	return removed
}

func (c Calendar) Copy() Calendar {
	return Calendar{Intervals: append([]Interval(nil), c.Intervals...)}
}

// Store owns the blocked intervals of every listing.
type Store interface {
	HasConflict(ctx context.Context, listingID string, r daterange.DateRange) (bool, error)
	Block(ctx context.Context, listingID string, r daterange.DateRange, bookingID string) error
	Unblock(ctx context.Context, listingID string, bookingID string) error
	Calendar(ctx context.Context, listingID string) (Calendar, error)
}

// Locker serializes conflict-check-and-block sequences per listing.
type Locker interface {
	Lock(ctx context.Context, listingID string) (unlock func(), err error)
}
