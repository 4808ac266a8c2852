package memory

import (
	"context"
	"time"

	domainavailability "campusconnect/internal/domain/availability"
	domainlistings "campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/daterange"
)

// AvailabilityStore reads and writes the blocked intervals held on the
// listings of a ListingRepository.
type AvailabilityStore struct {
	Listings *ListingRepository
	Now      func() time.Time
}

func NewAvailabilityStore(listings *ListingRepository) *AvailabilityStore {
	return &AvailabilityStore{Listings: listings}
}

func (s *AvailabilityStore) HasConflict(ctx context.Context, listingID string, r daterange.DateRange) (bool, error) {
	calendar, err := s.Listings.calendar(domainlistings.ListingID(listingID))
	if err != nil {
		return false, err
	}
	return calendar.HasConflict(r), nil
}

func (s *AvailabilityStore) Block(ctx context.Context, listingID string, r daterange.DateRange, bookingID string) error {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return s.Listings.mutateCalendar(domainlistings.ListingID(listingID), func(c *domainavailability.Calendar) {
		c.Block(r, bookingID, now)
	})
}

func (s *AvailabilityStore) Unblock(ctx context.Context, listingID string, bookingID string) error {
	return s.Listings.mutateCalendar(domainlistings.ListingID(listingID), func(c *domainavailability.Calendar) {
		c.Unblock(bookingID)
	})
}

func (s *AvailabilityStore) Calendar(ctx context.Context, listingID string) (domainavailability.Calendar, error) {
	return s.Listings.calendar(domainlistings.ListingID(listingID))
}

var _ domainavailability.Store = (*AvailabilityStore)(nil)
