package reviews

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"campusconnect/internal/domain/booking"
	"campusconnect/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound      = errors.New("reviews: not found")
)

type ReviewID string

// Review is immutable once submitted.
type Review struct {
	ID         ReviewID
	BookingID  booking.BookingID
	ReviewerID string
	RevieweeID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	BookingID  booking.BookingID
	ReviewerID string
	RevieweeID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	review := &Review{
		ID:         params.ID,
		BookingID:  params.BookingID,
		ReviewerID: params.ReviewerID,
		RevieweeID: params.RevieweeID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{
		ReviewID:   review.ID,
		BookingID:  review.BookingID,
		ReviewerID: review.ReviewerID,
		RevieweeID: review.RevieweeID,
		Rating:     review.Rating,
		At:         review.CreatedAt,
	})
	return review, nil
}

// Aggregate is the mean rating over every review a user received, rounded to
// one decimal place, and the review count.
func Aggregate(all []*Review) (float64, int) {
	if len(all) == 0 {
		return 0, 0
	}
	total := 0
	for _, r := range all {
		total += r.Rating
	}
	mean := float64(total) / float64(len(all))
	return math.Round(mean*10) / 10, len(all)
}
