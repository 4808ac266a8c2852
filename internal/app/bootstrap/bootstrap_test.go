package bootstrap_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusconnect/internal/app/bootstrap"
	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	availabilityapp "campusconnect/internal/app/handlers/availability"
	bookingapp "campusconnect/internal/app/handlers/booking"
	listingapp "campusconnect/internal/app/handlers/listings"
	reviewapp "campusconnect/internal/app/handlers/reviews"
	"campusconnect/internal/app/middleware"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainreviews "campusconnect/internal/domain/reviews"
	"campusconnect/internal/domain/shared/daterange"
	domainuser "campusconnect/internal/domain/user"
	"campusconnect/internal/infra/lock"
	"campusconnect/internal/infra/obs"
	"campusconnect/internal/infra/storage/memory"
	"campusconnect/internal/infra/validation"
)

type harness struct {
	t      *testing.T
	ctx    context.Context
	buses  bootstrap.Buses
	store  memory.Factory
	mu     sync.Mutex
	events []outbox.EventRecord
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, func(store memory.Factory) (uow.UoWFactory, domainavailability.Locker) {
		return store, lock.NewLocal()
	})
}

// newHarnessWith lets a test wrap the store and locker the buses run on.
func newHarnessWith(t *testing.T, wire func(memory.Factory) (uow.UoWFactory, domainavailability.Locker)) *harness {
	t.Helper()
	h := &harness{t: t, ctx: context.Background(), store: memory.NewStore()}
	factory, locker := wire(h.store)
	sink := func(_ context.Context, rec outbox.EventRecord) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, rec)
		return nil
	}
	h.buses = bootstrap.Build(bootstrap.Deps{
		UoWFactory:  factory,
		Outbox:      memory.NewOutbox(sink),
		Locker:      locker,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Validator:   validation.New(),
		Logger:      obs.Discard(),
	})
	for _, id := range []string{"owner", "alice", "bob"} {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(id),
			Email:        id + "@college.edu",
			Name:         id,
			PasswordHash: "x",
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := h.store.UsersRepo.Save(h.ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func may(d int) time.Time {
	return time.Date(2030, time.May, d, 0, 0, 0, 0, time.UTC)
}

func (h *harness) createListing(price int64) dto.Listing {
	h.t.Helper()
	res, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](h.ctx, h.buses.Commands, listingapp.CreateListingCommand{
		OwnerID: "owner",
		Payload: listingapp.ListingPayload{
			Title:       "Graphing calculator",
			Description: "TI-84, batteries included",
			Category:    "electronics",
			PricePerDay: price,
			Location:    "Main library",
		},
	})
	if err != nil {
		h.t.Fatalf("create listing: %v", err)
	}
	return *res
}

func (h *harness) request(listingID, borrower string, from, to int) (*dto.Booking, error) {
	return commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](h.ctx, h.buses.Commands, bookingapp.RequestBookingCommand{
		ListingID:  listingID,
		BorrowerID: borrower,
		StartDate:  may(from),
		EndDate:    may(to),
	})
}

func (h *harness) setStatus(bookingID, caller, status string) (*dto.Booking, error) {
	return commands.Dispatch[bookingapp.SetBookingStatusCommand, *dto.Booking](h.ctx, h.buses.Commands, bookingapp.SetBookingStatusCommand{
		BookingID: bookingID,
		CallerID:  caller,
		Status:    status,
	})
}

func (h *harness) calendar(listingID string) dto.Calendar {
	h.t.Helper()
	cal, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](h.ctx, h.buses.Queries, availabilityapp.GetCalendarQuery{ListingID: listingID})
	if err != nil {
		h.t.Fatalf("calendar: %v", err)
	}
	return cal
}

func (h *harness) mustRequest(listingID, borrower string, from, to int) *dto.Booking {
	h.t.Helper()
	b, err := h.request(listingID, borrower, from, to)
	if err != nil {
		h.t.Fatalf("request booking: %v", err)
	}
	return b
}

func (h *harness) mustSetStatus(bookingID, caller, status string) *dto.Booking {
	h.t.Helper()
	b, err := h.setStatus(bookingID, caller, status)
	if err != nil {
		h.t.Fatalf("set status %s: %v", status, err)
	}
	return b
}

func TestRequestBookingPricesAndSnapshotsOwner(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(100)

	b := h.mustRequest(listing.ID, "alice", 1, 4)
	if b.Status != "pending" || b.TotalDays != 3 || b.TotalPrice.Amount != 300 {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if b.Owner.ID != "owner" || b.Borrower.ID != "alice" || b.Listing.ID != listing.ID {
		t.Fatalf("unexpected parties: %+v", b)
	}
	if len(h.calendar(listing.ID).Blocked) != 0 {
		t.Fatal("pending booking must not block the calendar")
	}
}

func TestRequestBookingRejections(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(50)

	cases := []struct {
		name      string
		listingID string
		borrower  string
		from, to  int
		want      error
	}{
		{"unknown listing", "missing", "alice", 1, 2, nil},
		{"self booking", listing.ID, "owner", 1, 2, domainbooking.ErrSelfBooking},
		{"inverted range", listing.ID, "alice", 5, 1, daterange.ErrInvalidRange},
		{"anonymous", listing.ID, "", 1, 2, middleware.ErrUnauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.request(tc.listingID, tc.borrower, tc.from, tc.to)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	available := false
	if _, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.Listing](h.ctx, h.buses.Commands, listingapp.UpdateListingCommand{
		CallerID:  "owner",
		ListingID: listing.ID,
		Payload: listingapp.ListingPayload{
			Title:       "Graphing calculator",
			Description: "TI-84",
			PricePerDay: 50,
			Location:    "Main library",
			IsAvailable: &available,
		},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.request(listing.ID, "alice", 1, 2); !errors.Is(err, domainbooking.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestConflictCheckedBeforeRangeOrder(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(20)
	b := h.mustRequest(listing.ID, "alice", 1, 10)
	h.mustSetStatus(b.ID, "owner", "confirmed")

	if _, err := h.request(listing.ID, "bob", 5, 3); !errors.Is(err, domainbooking.ErrDateConflict) {
		t.Fatalf("inverted range over blocked dates: %v", err)
	}
	if _, err := h.request(listing.ID, "bob", 20, 15); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("inverted range on free dates: %v", err)
	}
}

func TestConfirmBlocksAndCancelFrees(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(100)

	first := h.mustRequest(listing.ID, "alice", 1, 5)
	second := h.mustRequest(listing.ID, "bob", 3, 7)

	if _, err := h.setStatus(first.ID, "alice", "confirmed"); !errors.Is(err, domainbooking.ErrUnauthorized) {
		t.Fatalf("borrower confirm: %v", err)
	}
	confirmed := h.mustSetStatus(first.ID, "owner", "confirmed")
	if confirmed.Status != "confirmed" {
		t.Fatalf("status = %s", confirmed.Status)
	}
	cal := h.calendar(listing.ID)
	if len(cal.Blocked) != 1 || cal.Blocked[0].BookingID != first.ID {
		t.Fatalf("calendar after confirm: %+v", cal)
	}

	if _, err := h.setStatus(second.ID, "owner", "confirmed"); !errors.Is(err, domainbooking.ErrDateConflict) {
		t.Fatalf("overlapping confirm: %v", err)
	}
	if _, err := h.request(listing.ID, "bob", 4, 6); !errors.Is(err, domainbooking.ErrDateConflict) {
		t.Fatalf("overlapping request: %v", err)
	}
	h.mustRequest(listing.ID, "bob", 5, 6)

	h.mustSetStatus(first.ID, "alice", "cancelled")
	if cal := h.calendar(listing.ID); len(cal.Blocked) != 0 {
		t.Fatalf("calendar after cancel: %+v", cal)
	}
	if _, err := h.setStatus(first.ID, "owner", "completed"); !errors.Is(err, domainbooking.ErrInvalidTransition) {
		t.Fatalf("transition out of cancelled: %v", err)
	}

	h.mustSetStatus(second.ID, "owner", "confirmed")
	if cal := h.calendar(listing.ID); len(cal.Blocked) != 1 || cal.Blocked[0].BookingID != second.ID {
		t.Fatalf("calendar after second confirm: %+v", cal)
	}
}

func TestCancelledRangeCanBeRebookedByAnotherBorrower(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(40)

	first := h.mustRequest(listing.ID, "alice", 10, 14)
	h.mustSetStatus(first.ID, "owner", "confirmed")
	if _, err := h.request(listing.ID, "bob", 10, 14); !errors.Is(err, domainbooking.ErrDateConflict) {
		t.Fatalf("request over confirmed range: %v", err)
	}
	h.mustSetStatus(first.ID, "alice", "cancelled")

	again := h.mustRequest(listing.ID, "bob", 10, 14)
	if again.TotalPrice.Amount != 160 {
		t.Fatalf("total price = %d", again.TotalPrice.Amount)
	}
	h.mustSetStatus(again.ID, "owner", "confirmed")
	cal := h.calendar(listing.ID)
	if len(cal.Blocked) != 1 || cal.Blocked[0].BookingID != again.ID {
		t.Fatalf("calendar = %+v", cal)
	}
	if !cal.Blocked[0].Start.Equal(may(10)) || !cal.Blocked[0].End.Equal(may(14)) {
		t.Fatalf("blocked range = %v..%v", cal.Blocked[0].Start, cal.Blocked[0].End)
	}
}

type stepLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stepLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *stepLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = nil
}

func (l *stepLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

type loggingFactory struct {
	memory.Factory
	log *stepLog
}

func (f loggingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Factory.Begin(ctx, opts)
	if err != nil || opts.ReadOnly {
		return unit, err
	}
	return loggingUnit{UnitOfWork: unit, log: f.log}, nil
}

type loggingUnit struct {
	uow.UnitOfWork
	log *stepLog
}

func (u loggingUnit) Commit(ctx context.Context) error {
	u.log.add("commit")
	return u.UnitOfWork.Commit(ctx)
}

type loggingLocker struct {
	inner *lock.Local
	log   *stepLog
}

func (l loggingLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := l.inner.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	l.log.add("lock " + key)
	return func() {
		l.log.add("unlock")
		unlock()
	}, nil
}

func TestConfirmHoldsListingLockUntilCommit(t *testing.T) {
	log := &stepLog{}
	h := newHarnessWith(t, func(store memory.Factory) (uow.UoWFactory, domainavailability.Locker) {
		return loggingFactory{Factory: store, log: log}, loggingLocker{inner: lock.NewLocal(), log: log}
	})
	listing := h.createListing(10)
	b := h.mustRequest(listing.ID, "alice", 1, 3)

	log.reset()
	h.mustSetStatus(b.ID, "owner", "confirmed")
	got := log.snapshot()
	want := []string{"lock listing:" + listing.ID, "commit", "unlock"}
	if len(got) != len(want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("steps = %v, want %v", got, want)
		}
	}

	log.reset()
	h.mustSetStatus(b.ID, "owner", "completed")
	if got := log.snapshot(); len(got) != 1 || got[0] != "commit" {
		t.Fatalf("completion steps = %v", got)
	}
}

func TestReviewUpdatesRating(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(100)
	b := h.mustRequest(listing.ID, "alice", 1, 3)

	submit := func(reviewer, reviewee string, rating int) (dto.Review, error) {
		return commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](h.ctx, h.buses.Commands, reviewapp.SubmitReviewCommand{
			BookingID:  b.ID,
			ReviewerID: reviewer,
			RevieweeID: reviewee,
			Rating:     rating,
			Comment:    "Smooth handover",
		})
	}

	if _, err := submit("alice", "owner", 5); !errors.Is(err, domainbooking.ErrNotCompleted) {
		t.Fatalf("review of pending booking: %v", err)
	}
	h.mustSetStatus(b.ID, "owner", "confirmed")
	h.mustSetStatus(b.ID, "owner", "completed")

	if _, err := submit("bob", "owner", 5); !errors.Is(err, domainbooking.ErrUnauthorized) {
		t.Fatalf("outsider review: %v", err)
	}
	if _, err := submit("alice", "owner", 9); err == nil {
		t.Fatal("out of range rating accepted")
	}
	review, err := submit("alice", "owner", 5)
	if err != nil {
		t.Fatal(err)
	}
	if review.Reviewer.ID != "alice" || review.Rating != 5 {
		t.Fatalf("review: %+v", review)
	}
	if _, err := submit("alice", "owner", 4); !errors.Is(err, domainbooking.ErrAlreadyReviewed) {
		t.Fatalf("second review: %v", err)
	}

	owner, err := h.store.UsersRepo.ByID(h.ctx, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if owner.Rating != 5.0 || owner.TotalReviews != 1 {
		t.Fatalf("owner rating = %v over %d", owner.Rating, owner.TotalReviews)
	}

	list, err := queries.Ask[reviewapp.ListUserReviewsQuery, dto.ReviewCollection](h.ctx, h.buses.Queries, reviewapp.ListUserReviewsQuery{UserID: "owner"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Rating != 5 || list.TotalReviews != 1 {
		t.Fatalf("review list: %+v", list)
	}

	mine, err := queries.Ask[bookingapp.ListMyBookingsQuery, dto.MyBookings](h.ctx, h.buses.Queries, bookingapp.ListMyBookingsQuery{UserID: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine.Sent) != 1 || !mine.Sent[0].ReviewLeft {
		t.Fatalf("my bookings: %+v", mine)
	}
}

func TestReviewRejectedWhenBookingAlreadyHasOne(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(100)
	b := h.mustRequest(listing.ID, "alice", 1, 3)
	h.mustSetStatus(b.ID, "owner", "confirmed")
	h.mustSetStatus(b.ID, "owner", "completed")

	existing, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         "imported",
		BookingID:  domainbooking.BookingID(b.ID),
		ReviewerID: "owner",
		RevieweeID: "alice",
		Rating:     4,
		CreatedAt:  may(4),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.store.ReviewsRepo.Save(h.ctx, existing); err != nil {
		t.Fatal(err)
	}

	_, err = commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](h.ctx, h.buses.Commands, reviewapp.SubmitReviewCommand{
		BookingID:  b.ID,
		ReviewerID: "alice",
		RevieweeID: "owner",
		Rating:     5,
	})
	if !errors.Is(err, domainbooking.ErrAlreadyReviewed) {
		t.Fatalf("review over stored review: %v", err)
	}
	owner, err := h.store.UsersRepo.ByID(h.ctx, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if owner.TotalReviews != 0 {
		t.Fatalf("owner total reviews = %d", owner.TotalReviews)
	}
}

func TestIdempotentBookingRequest(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(20)
	cmd := bookingapp.RequestBookingCommand{
		ListingID:       listing.ID,
		BorrowerID:      "alice",
		StartDate:       may(1),
		EndDate:         may(2),
		IdempotencyKeyV: "req-1",
	}
	first, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](h.ctx, h.buses.Commands, cmd)
	if err != nil {
		t.Fatal(err)
	}
	again, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](h.ctx, h.buses.Commands, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != again.ID {
		t.Fatalf("replay created a new booking: %s vs %s", first.ID, again.ID)
	}
	mine, _ := queries.Ask[bookingapp.ListMyBookingsQuery, dto.MyBookings](h.ctx, h.buses.Queries, bookingapp.ListMyBookingsQuery{UserID: "alice"})
	if len(mine.Sent) != 1 {
		t.Fatalf("bookings stored: %d", len(mine.Sent))
	}
}

func TestEventsReachOutboxWithRecipients(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(10)
	b := h.mustRequest(listing.ID, "alice", 1, 2)
	h.mustSetStatus(b.ID, "owner", "confirmed")

	h.mu.Lock()
	defer h.mu.Unlock()
	var names []string
	for _, ev := range h.events {
		names = append(names, ev.Name)
	}
	want := []string{"listing.created", "booking.requested", "booking.confirmed"}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("events = %v, want %v", names, want)
		}
	}
	if got := h.events[2].Recipients(); len(got) != 2 {
		t.Fatalf("confirmed recipients = %v", got)
	}
}

func TestConcurrentConfirmsBlockOnce(t *testing.T) {
	h := newHarness(t)
	listing := h.createListing(10)
	a := h.mustRequest(listing.ID, "alice", 1, 5)
	b := h.mustRequest(listing.ID, "bob", 2, 6)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.setStatus(id, "owner", "confirmed")
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainbooking.ErrDateConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || len(h.calendar(listing.ID).Blocked) != 1 {
		t.Fatalf("succeeded=%d blocked=%d", succeeded, len(h.calendar(listing.ID).Blocked))
	}
}
