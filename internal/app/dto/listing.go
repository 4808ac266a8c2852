package dto

import (
	"time"

	domainlistings "campusconnect/internal/domain/listings"
)

type Listing struct {
	ID          string      `json:"id"`
	Owner       UserSummary `json:"owner"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	PricePerDay MoneyDTO    `json:"price_per_day"`
	Photos      []string    `json:"photos"`
	Location    string      `json:"location"`
	Condition   string      `json:"condition"`
	IsAvailable bool        `json:"is_available"`
	BookedDates []Interval  `json:"booked_dates"`
	Views       int64       `json:"views"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ListingCollection struct {
	Items []Listing `json:"items"`
	Total int       `json:"total"`
}

// ListingSnapshot is the slice of a listing embedded in booking views.
type ListingSnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Photos      []string `json:"photos"`
	PricePerDay MoneyDTO `json:"price_per_day"`
}

func MapListing(listing *domainlistings.Listing, owner UserSummary) Listing {
	if listing == nil {
		return Listing{}
	}
	photos := append([]string{}, listing.Photos...)
	return Listing{
		ID:          string(listing.ID),
		Owner:       owner,
		Title:       listing.Title,
		Description: listing.Description,
		Category:    string(listing.Category),
		PricePerDay: MapMoney(listing.PricePerDay),
		Photos:      photos,
		Location:    listing.Location,
		Condition:   string(listing.Condition),
		IsAvailable: listing.IsAvailable,
		BookedDates: MapIntervals(listing.BookedDates),
		Views:       listing.Views,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func MapListingSnapshot(id domainlistings.ListingID, listing *domainlistings.Listing) ListingSnapshot {
	snapshot := ListingSnapshot{ID: string(id), Photos: []string{}}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.Photos = append(snapshot.Photos, listing.Photos...)
		snapshot.PricePerDay = MapMoney(listing.PricePerDay)
	}
	return snapshot
}
