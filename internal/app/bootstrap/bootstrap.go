// Package bootstrap registers every command and query handler on the buses
// and wraps them in the middleware pipeline.
package bootstrap

import (
	"log/slog"
	"time"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	availabilityapp "campusconnect/internal/app/handlers/availability"
	bookingapp "campusconnect/internal/app/handlers/booking"
	eventapp "campusconnect/internal/app/handlers/events"
	listingapp "campusconnect/internal/app/handlers/listings"
	reviewapp "campusconnect/internal/app/handlers/reviews"
	"campusconnect/internal/app/middleware"
	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Locker      domainavailability.Locker
	Uploader    listingapp.PhotoUploader
	Idempotency middleware.IdempotencyStore
	Validator   middleware.Validator
	Logger      *slog.Logger
	Now         func() time.Time
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
	// Registered keys, for startup logging.
	CommandKeys []string
	QueryKeys   []string
}

func Build(d Deps) Buses {
	encoder := d.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}

	cmdBus := commands.NewInMemoryBus()
	commands.Register[bookingapp.RequestBookingCommand, *dto.Booking](cmdBus, &bookingapp.RequestBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[bookingapp.SetBookingStatusCommand, *dto.Booking](cmdBus, &bookingapp.SetBookingStatusHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[reviewapp.SubmitReviewCommand, dto.Review](cmdBus, &reviewapp.SubmitReviewHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[listingapp.CreateListingCommand, *dto.Listing](cmdBus, &listingapp.CreateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger,
	})
	commands.Register[listingapp.UpdateListingCommand, *dto.Listing](cmdBus, &listingapp.UpdateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger,
	})
	commands.Register[listingapp.DeleteListingCommand, *listingapp.DeleteListingResult](cmdBus, &listingapp.DeleteListingHandler{
		UoWFactory: d.UoWFactory, Logger: d.Logger,
	})
	commands.Register[listingapp.UploadListingPhotoCommand, *dto.Listing](cmdBus, &listingapp.UploadListingPhotoHandler{
		UoWFactory: d.UoWFactory, Uploader: d.Uploader, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[eventapp.CreateEventCommand, *dto.Event](cmdBus, &eventapp.CreateEventHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[eventapp.ToggleInterestCommand, *dto.Interest](cmdBus, &eventapp.ToggleInterestHandler{
		UoWFactory: d.UoWFactory, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[eventapp.DeleteEventCommand, *eventapp.DeleteEventResult](cmdBus, &eventapp.DeleteEventHandler{
		UoWFactory: d.UoWFactory, Logger: d.Logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[listingapp.GetListingQuery, dto.Listing](queryBus, &listingapp.GetListingHandler{UoWFactory: d.UoWFactory})
	queries.Register[listingapp.SearchListingsQuery, dto.ListingCollection](queryBus, &listingapp.SearchListingsHandler{UoWFactory: d.UoWFactory})
	queries.Register[listingapp.ListMyListingsQuery, dto.ListingCollection](queryBus, &listingapp.ListMyListingsHandler{UoWFactory: d.UoWFactory})
	queries.Register[availabilityapp.GetCalendarQuery, dto.Calendar](queryBus, &availabilityapp.GetCalendarHandler{UoWFactory: d.UoWFactory})
	queries.Register[bookingapp.ListMyBookingsQuery, dto.MyBookings](queryBus, &bookingapp.ListMyBookingsHandler{UoWFactory: d.UoWFactory})
	queries.Register[reviewapp.ListUserReviewsQuery, dto.ReviewCollection](queryBus, &reviewapp.ListUserReviewsHandler{UoWFactory: d.UoWFactory})
	queries.Register[eventapp.ListEventsQuery, dto.EventCollection](queryBus, &eventapp.ListEventsHandler{UoWFactory: d.UoWFactory})
	queries.Register[eventapp.GetEventQuery, dto.Event](queryBus, &eventapp.GetEventHandler{UoWFactory: d.UoWFactory})

	var (
		validation      middleware.CommandMiddleware
		queryValidation middleware.QueryMiddleware
		idempotency     middleware.CommandMiddleware
		flush           middleware.CommandMiddleware
		listingLock     middleware.CommandMiddleware
	)
	if d.Validator != nil {
		validation = middleware.Validation(d.Validator)
		queryValidation = middleware.QueryValidation(d.Validator)
	}
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil)
	}
	if d.Outbox != nil {
		flush = middleware.OutboxFlush(d.Outbox)
	}
	if d.Locker != nil {
		listingLock = middleware.ResourceLock(d.Locker, bookingapp.ConfirmLock{UoWFactory: d.UoWFactory})
	}

	return Buses{
		Commands: middleware.ChainCommands(
			cmdBus,
			middleware.Logging(d.Logger),
			middleware.Authorization(middleware.RequireActor{}),
			validation,
			idempotency,
			flush,
			listingLock,
			middleware.Transaction(d.UoWFactory, nil),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryLogging(d.Logger),
			middleware.QueryAuthorization(middleware.RequireActor{}),
			queryValidation,
		),
		CommandKeys: cmdBus.Keys(),
		QueryKeys:   queryBus.Keys(),
	}
}
