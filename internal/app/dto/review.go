package dto

import (
	"time"

	domainreviews "campusconnect/internal/domain/reviews"
)

type Review struct {
	ID        string      `json:"id"`
	BookingID string      `json:"booking_id"`
	Reviewer  UserSummary `json:"reviewer"`
	Reviewee  string      `json:"reviewee_id"`
	Rating    int         `json:"rating"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
}

type ReviewCollection struct {
	Items        []Review `json:"items"`
	Rating       float64  `json:"rating"`
	TotalReviews int      `json:"total_reviews"`
}

func MapReview(review *domainreviews.Review, reviewer UserSummary) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:        string(review.ID),
		BookingID: string(review.BookingID),
		Reviewer:  reviewer,
		Reviewee:  review.RevieweeID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
