package listings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/uow"
	domainlistings "campusconnect/internal/domain/listings"
	"campusconnect/internal/domain/shared/money"
	domainuser "campusconnect/internal/domain/user"
)

const (
	createListingKey = "listings.create"
	updateListingKey = "listings.update"
	deleteListingKey = "listings.delete"
)

// ListingPayload holds the owner-editable attributes.
type ListingPayload struct {
	Title       string   `validate:"required,max=100"`
	Description string   `validate:"required,max=1000"`
	Category    string   `validate:"omitempty,oneof=books electronics sports clothing stationery musical other"`
	PricePerDay int64    `validate:"gte=1"`
	Photos      []string `validate:"dive,url"`
	Location    string   `validate:"required"`
	Condition   string   `validate:"omitempty,oneof=new like-new good fair"`
	IsAvailable *bool
}

type CreateListingCommand struct {
	OwnerID string `validate:"required"`
	Payload ListingPayload
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) ActorID() string { return c.OwnerID }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(uuid.NewString()),
		Owner:       domainlistings.OwnerID(cmd.OwnerID),
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		Category:    cmd.Payload.Category,
		PricePerDay: money.Money{Amount: cmd.Payload.PricePerDay, Currency: money.DefaultCurrency},
		Photos:      cmd.Payload.Photos,
		Location:    cmd.Payload.Location,
		Condition:   cmd.Payload.Condition,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if cmd.Payload.IsAvailable != nil {
		listing.IsAvailable = *cmd.Payload.IsAvailable
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	view, err := mapWithOwner(ctx, unit, listing)
	if err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", cmd.OwnerID)
	}
	return &view, nil
}

type UpdateListingCommand struct {
	CallerID  string `validate:"required"`
	ListingID string `validate:"required"`
	Payload   ListingPayload
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

func (c UpdateListingCommand) ActorID() string { return c.CallerID }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(cmd.CallerID) {
		return nil, domainlistings.ErrNotOwner
	}
	available := listing.IsAvailable
	if cmd.Payload.IsAvailable != nil {
		available = *cmd.Payload.IsAvailable
	}
	photos := cmd.Payload.Photos
	if photos == nil {
		photos = listing.Photos
	}
	if err := listing.Update(domainlistings.UpdateListingParams{
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		Category:    cmd.Payload.Category,
		PricePerDay: money.Money{Amount: cmd.Payload.PricePerDay, Currency: listing.PricePerDay.Currency},
		Photos:      photos,
		Location:    cmd.Payload.Location,
		Condition:   cmd.Payload.Condition,
		IsAvailable: available,
		Now:         time.Now(),
	}); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	view, err := mapWithOwner(ctx, unit, listing)
	if err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID, "is_available", listing.IsAvailable)
	}
	return &view, nil
}

type DeleteListingCommand struct {
	CallerID  string `validate:"required"`
	ListingID string `validate:"required"`
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

func (c DeleteListingCommand) ActorID() string { return c.CallerID }

type DeleteListingResult struct {
	ListingID string `json:"listing_id"`
}

// DeleteListingHandler removes a listing on behalf of its owner or an admin.
// Bookings that reference it are kept.
type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(cmd.CallerID) {
		caller, err := unit.Users().ByID(ctx, domainuser.ID(cmd.CallerID))
		if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		if caller == nil || !caller.IsAdmin() {
			return nil, domainlistings.ErrNotOwner
		}
	}
	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID, "caller_id", cmd.CallerID)
	}
	return &DeleteListingResult{ListingID: string(listing.ID)}, nil
}

func mapWithOwner(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing) (dto.Listing, error) {
	owner, err := unit.Users().ByID(ctx, domainuser.ID(listing.Owner))
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing, dto.MapUserSummary(string(listing.Owner), owner)), nil
}

var _ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
var _ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
var _ commands.Handler[DeleteListingCommand, *DeleteListingResult] = (*DeleteListingHandler)(nil)
