package availability

import (
	"context"
	"errors"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainavailability "campusconnect/internal/domain/availability"
	domainlistings "campusconnect/internal/domain/listings"
)

const getCalendarKey = "availability.calendar"

// GetCalendarQuery returns the blocked intervals of one listing.
type GetCalendarQuery struct {
	ListingID string `validate:"required"`
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	defer unit.Close(ctx)

	calendar, err := unit.Availability().Calendar(ctx, q.ListingID)
	if err != nil {
		if errors.Is(err, domainavailability.ErrListingNotFound) {
			return dto.Calendar{}, domainlistings.ErrNotFound
		}
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(q.ListingID, calendar), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
