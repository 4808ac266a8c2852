package dto

import (
	"time"

	domainavailability "campusconnect/internal/domain/availability"
)

type Interval struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	BookingID string    `json:"booking_id"`
}

type Calendar struct {
	ListingID string     `json:"listing_id"`
	Blocked   []Interval `json:"blocked"`
}

func MapIntervals(calendar domainavailability.Calendar) []Interval {
	out := make([]Interval, 0, len(calendar.Intervals))
	for _, interval := range calendar.Intervals {
		out = append(out, Interval{
			Start:     interval.Range.Start,
			End:       interval.Range.End,
			BookingID: interval.BookingID,
		})
	}
	return out
}

func MapCalendar(listingID string, calendar domainavailability.Calendar) Calendar {
	return Calendar{ListingID: listingID, Blocked: MapIntervals(calendar)}
}
