package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/uow"
	domainbooking "campusconnect/internal/domain/booking"
	domainreviews "campusconnect/internal/domain/reviews"
	domainuser "campusconnect/internal/domain/user"
)

const submitReviewKey = "reviews.submit"

// SubmitReviewCommand rates the other party of a completed booking.
type SubmitReviewCommand struct {
	BookingID  string `validate:"required"`
	ReviewerID string `validate:"required"`
	RevieweeID string `validate:"required"`
	Rating     int
	Comment    string `validate:"max=2000"`
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) ActorID() string { return c.ReviewerID }

type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Review{}, err
	}
	defer unit.Close(ctx)

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Review{}, err
	}
	counterpart, ok := booking.Counterpart(cmd.ReviewerID)
	if !ok || counterpart != strings.TrimSpace(cmd.RevieweeID) {
		return dto.Review{}, domainbooking.ErrUnauthorized
	}
	if err := booking.EnsureReviewable(); err != nil {
		return dto.Review{}, err
	}
	switch _, err := unit.Reviews().ByBooking(ctx, booking.ID); {
	case err == nil:
		return dto.Review{}, domainbooking.ErrAlreadyReviewed
	case !errors.Is(err, domainreviews.ErrNotFound):
		return dto.Review{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		BookingID:  booking.ID,
		ReviewerID: cmd.ReviewerID,
		RevieweeID: counterpart,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}

	reviewee, err := recalculateUserRating(ctx, unit, counterpart, now)
	if err != nil {
		return dto.Review{}, err
	}

	if err := booking.MarkReviewed(now); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return dto.Review{}, err
	}

	reviewer, err := unit.Users().ByID(ctx, domainuser.ID(cmd.ReviewerID))
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.Review{}, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, review.Drain()); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Commit(ctx); err != nil {
		return dto.Review{}, err
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted",
			"booking_id", booking.ID,
			"reviewer_id", cmd.ReviewerID,
			"reviewee_id", counterpart,
			"rating", review.Rating,
			"reviewee_rating", reviewee.Rating,
			"reviewee_total", reviewee.TotalReviews,
		)
	}
	return dto.MapReview(review, dto.MapUserSummary(cmd.ReviewerID, reviewer)), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
