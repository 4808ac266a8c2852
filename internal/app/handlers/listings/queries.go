package listings

import (
	"context"
	"errors"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainlistings "campusconnect/internal/domain/listings"
	domainuser "campusconnect/internal/domain/user"
)

const (
	getListingKey     = "listings.get"
	searchListingsKey = "listings.search"
	listMyListingsKey = "listings.list_mine"
)

// GetListingQuery reads one listing and counts the view.
type GetListingQuery struct {
	ListingID string `validate:"required"`
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	defer unit.Close(ctx)

	id := domainlistings.ListingID(q.ListingID)
	if err := unit.Listings().IncrementViews(ctx, id); err != nil {
		return dto.Listing{}, err
	}
	listing, err := unit.Listings().ByID(ctx, id)
	if err != nil {
		return dto.Listing{}, err
	}
	return mapWithOwner(ctx, unit, listing)
}

type SearchListingsQuery struct {
	Text          string
	Category      string `validate:"omitempty,oneof=books electronics sports clothing stationery musical other"`
	MinPrice      int64  `validate:"gte=0"`
	MaxPrice      int64  `validate:"gte=0"`
	OnlyAvailable bool
	Limit         int `validate:"gte=0"`
	Offset        int `validate:"gte=0"`
}

func (q SearchListingsQuery) Key() string { return searchListingsKey }

type SearchListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingCollection, error) {
	return runSearch(ctx, h.UoWFactory, domainlistings.SearchParams{
		Text:          q.Text,
		Category:      domainlistings.Category(q.Category),
		PriceMin:      q.MinPrice,
		PriceMax:      q.MaxPrice,
		OnlyAvailable: q.OnlyAvailable,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
}

type ListMyListingsQuery struct {
	OwnerID string `validate:"required"`
}

func (q ListMyListingsQuery) Key() string { return listMyListingsKey }

func (q ListMyListingsQuery) ActorID() string { return q.OwnerID }

type ListMyListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyListingsHandler) Handle(ctx context.Context, q ListMyListingsQuery) (dto.ListingCollection, error) {
	return runSearch(ctx, h.UoWFactory, domainlistings.SearchParams{Owner: domainlistings.OwnerID(q.OwnerID)})
}

func runSearch(ctx context.Context, factory uow.UoWFactory, params domainlistings.SearchParams) (dto.ListingCollection, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	defer unit.Close(ctx)

	found, err := unit.Listings().Search(ctx, params.Normalized())
	if err != nil {
		return dto.ListingCollection{}, err
	}
	owners := make(map[domainlistings.OwnerID]dto.UserSummary)
	items := make([]dto.Listing, 0, len(found))
	for _, listing := range found {
		owner, ok := owners[listing.Owner]
		if !ok {
			user, err := unit.Users().ByID(ctx, domainuser.ID(listing.Owner))
			if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
				return dto.ListingCollection{}, err
			}
			owner = dto.MapUserSummary(string(listing.Owner), user)
			owners[listing.Owner] = owner
		}
		items = append(items, dto.MapListing(listing, owner))
	}
	return dto.ListingCollection{Items: items, Total: len(items)}, nil
}

var _ queries.Handler[GetListingQuery, dto.Listing] = (*GetListingHandler)(nil)
var _ queries.Handler[SearchListingsQuery, dto.ListingCollection] = (*SearchListingsHandler)(nil)
var _ queries.Handler[ListMyListingsQuery, dto.ListingCollection] = (*ListMyListingsHandler)(nil)
