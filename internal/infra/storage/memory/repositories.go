package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainlistings "campusconnect/internal/domain/listings"
	domainreviews "campusconnect/internal/domain/reviews"
	"campusconnect/internal/domain/shared/events"
)

// ListingRepository keeps listings in memory. Stored values are copies, so
// callers only observe their changes after Save.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

// Save stores listing. The blocked intervals of an existing listing are kept
// as stored; only the availability store changes them.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneListing(listing)
	if existing, ok := r.items[listing.ID]; ok {
		stored.BookedDates = existing.BookedDates.Copy()
		stored.Views = existing.Views
	}
	stored.Version++
	listing.Version = stored.Version
	r.items[listing.ID] = stored
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	params = params.Normalized()
	r.mu.RLock()
	matched := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if params.Matches(listing) {
			matched = append(matched, cloneListing(listing))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if params.Offset >= len(matched) {
		return []*domainlistings.Listing{}, nil
	}
	end := params.Offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[id]
	if !ok {
		return domainlistings.ErrNotFound
	}
	listing.Views++
	return nil
}

// mutateCalendar runs fn against the stored calendar of one listing.
func (r *ListingRepository) mutateCalendar(id domainlistings.ListingID, fn func(*domainavailability.Calendar)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[id]
	if !ok {
		return domainavailability.ErrListingNotFound
	}
	fn(&listing.BookedDates)
	return nil
}

func (r *ListingRepository) calendar(id domainlistings.ListingID) (domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return domainavailability.Calendar{}, domainavailability.ErrListingNotFound
	}
	return listing.BookedDates.Copy(), nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.Photos = append([]string(nil), l.Photos...)
	copyListing.BookedDates = l.BookedDates.Copy()
	copyListing.EventRecorder = events.EventRecorder{}
	return &copyListing
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	r.items[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *BookingRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.BorrowerID == borrowerID }), nil
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if keep(booking) {
			out = append(out, cloneBooking(booking))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	copyBooking := *b
	copyBooking.EventRecorder = events.EventRecorder{}
	return &copyBooking
}

// ReviewsRepository keeps at most one review per booking.
type ReviewsRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainreviews.Review
}

func NewReviewsRepository() *ReviewsRepository {
	return &ReviewsRepository{items: make(map[domainbooking.BookingID]*domainreviews.Review)}
}

func (r *ReviewsRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if review, ok := r.items[bookingID]; ok {
		return cloneReview(review), nil
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewsRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.RevieweeID == revieweeID {
			out = append(out, cloneReview(review))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ReviewsRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[review.BookingID]; ok && existing.ID != review.ID {
		return domainbooking.ErrAlreadyReviewed
	}
	r.items[review.BookingID] = cloneReview(review)
	return nil
}

func cloneReview(rv *domainreviews.Review) *domainreviews.Review {
	copyReview := *rv
	copyReview.EventRecorder = events.EventRecorder{}
	return &copyReview
}

var _ domainlistings.ListingRepository = (*ListingRepository)(nil)
var _ domainbooking.Repository = (*BookingRepository)(nil)
var _ domainreviews.Repository = (*ReviewsRepository)(nil)
