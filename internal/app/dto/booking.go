package dto

import (
	"time"

	domainbooking "campusconnect/internal/domain/booking"
	"campusconnect/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Booking struct {
	ID          string          `json:"id"`
	Listing     ListingSnapshot `json:"listing"`
	Borrower    UserSummary     `json:"borrower"`
	Owner       UserSummary     `json:"owner"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	TotalDays   int             `json:"total_days"`
	PricePerDay MoneyDTO        `json:"price_per_day"`
	TotalPrice  MoneyDTO        `json:"total_price"`
	Status      string          `json:"status"`
	Message     string          `json:"message"`
	ReviewLeft  bool            `json:"review_left"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MyBookings splits the caller's bookings by role.
type MyBookings struct {
	Sent     []Booking `json:"sent"`
	Received []Booking `json:"received"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

func MapBooking(booking *domainbooking.Booking, listing ListingSnapshot, borrower, owner UserSummary) Booking {
	return Booking{
		ID:          string(booking.ID),
		Listing:     listing,
		Borrower:    borrower,
		Owner:       owner,
		StartDate:   booking.Range.Start,
		EndDate:     booking.Range.End,
		TotalDays:   booking.TotalDays,
		PricePerDay: MapMoney(booking.PricePerDay),
		TotalPrice:  MapMoney(booking.TotalPrice),
		Status:      string(booking.Status),
		Message:     booking.Message,
		ReviewLeft:  booking.ReviewLeft,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}
