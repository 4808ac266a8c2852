package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusconnect/internal/domain/availability"
	"campusconnect/internal/domain/shared/events"
	"campusconnect/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("listings: not found")
	ErrTitleRequired     = errors.New("listings: title is required")
	ErrDescriptionNeeded = errors.New("listings: description is required")
	ErrLocationRequired  = errors.New("listings: pickup location is required")
	ErrPricePerDay       = errors.New("listings: price per day must be at least 1")
	ErrInvalidCategory   = errors.New("listings: invalid category")
	ErrInvalidCondition  = errors.New("listings: invalid condition")
	ErrOwnerRequired     = errors.New("listings: owner is required")
	ErrNotOwner          = errors.New("listings: not owned by caller")
)

type ListingID string
type OwnerID string

type Category string

const (
	CategoryBooks       Category = "books"
	CategoryElectronics Category = "electronics"
	CategorySports      Category = "sports"
	CategoryClothing    Category = "clothing"
	CategoryStationery  Category = "stationery"
	CategoryMusical     Category = "musical"
	CategoryOther       Category = "other"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	Category    Category
	PricePerDay money.Money
	Photos      []string
	Location    string
	Condition   Condition
	IsAvailable bool
	BookedDates availability.Calendar
	Views       int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
	IncrementViews(ctx context.Context, id ListingID) error
}

type CreateListingParams struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	Category    string
	PricePerDay money.Money
	Photos      []string
	Location    string
	Condition   string
	Now         time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	category, err := ParseCategory(params.Category)
	if err != nil {
		return nil, err
	}
	condition, err := ParseCondition(params.Condition)
	if err != nil {
		return nil, err
	}
	listing := &Listing{
		ID:          params.ID,
		Owner:       params.Owner,
		Category:    category,
		Condition:   condition,
		IsAvailable: true,
		CreatedAt:   params.Now.UTC(),
		UpdatedAt:   params.Now.UTC(),
	}
	if err := listing.applyDetails(params.Title, params.Description, params.Location, params.PricePerDay, params.Photos); err != nil {
		return nil, err
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, OwnerID: listing.Owner, At: listing.CreatedAt})
	return listing, nil
}

type UpdateListingParams struct {
	Title       string
	Description string
	Category    string
	PricePerDay money.Money
	Photos      []string
	Location    string
	Condition   string
	IsAvailable bool
	Now         time.Time
}

// Update replaces the editable attributes. BookedDates is owned by the booking
// engine and is never touched here.
func (l *Listing) Update(params UpdateListingParams) error {
	category, err := ParseCategory(params.Category)
	if err != nil {
		return err
	}
	condition, err := ParseCondition(params.Condition)
	if err != nil {
		return err
	}
	if err := l.applyDetails(params.Title, params.Description, params.Location, params.PricePerDay, params.Photos); err != nil {
		return err
	}
	l.Category = category
	l.Condition = condition
	l.IsAvailable = params.IsAvailable
	l.UpdatedAt = params.Now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, IsAvailable: l.IsAvailable, At: l.UpdatedAt})
	return nil
}

func (l *Listing) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("listings: photo url is required")
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) OwnedBy(id string) bool {
	return string(l.Owner) == strings.TrimSpace(id)
}

func (l *Listing) applyDetails(title, description, location string, price money.Money, photos []string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrDescriptionNeeded
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return ErrLocationRequired
	}
	if price.Amount < 1 {
		return ErrPricePerDay
	}
	if price.Currency == "" {
		price.Currency = money.DefaultCurrency
	}
	l.Title = title
	l.Description = description
	l.Location = location
	l.PricePerDay = price
	l.Photos = cleanPhotos(photos)
	return nil
}

func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return CategoryOther, nil
	case CategoryBooks, CategoryElectronics, CategorySports, CategoryClothing, CategoryStationery, CategoryMusical, CategoryOther:
		return c, nil
	default:
		return "", ErrInvalidCategory
	}
}

func ParseCondition(raw string) (Condition, error) {
	switch c := Condition(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return ConditionGood, nil
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair:
		return c, nil
	default:
		return "", ErrInvalidCondition
	}
}

func cleanPhotos(photos []string) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
