package reviews

import (
	"time"

	"campusconnect/internal/domain/booking"
)

type ReviewSubmitted struct {
	ReviewID   ReviewID
	BookingID  booking.BookingID
	ReviewerID string
	RevieweeID string
	Rating     int
	At         time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
func (e ReviewSubmitted) Recipients() []string  { return []string{e.RevieweeID} }
