package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	bookingapp "campusconnect/internal/app/handlers/booking"
	"campusconnect/internal/app/queries"
)

const headerIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID      string `json:"listingId"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	SnakeListingID string `json:"listing_id"`
	SnakeStartDate string `json:"start_date"`
	SnakeEndDate   string `json:"end_date"`
	Message        string `json:"message"`
}

// normalize folds the snake_case spellings into the camelCase fields.
func (r *createBookingRequest) normalize() bool {
	r.ListingID = strings.TrimSpace(either(r.ListingID, r.SnakeListingID))
	r.StartDate = either(r.StartDate, r.SnakeStartDate)
	r.EndDate = either(r.EndDate, r.SnakeEndDate)
	return r.ListingID != "" && strings.TrimSpace(r.StartDate) != "" && strings.TrimSpace(r.EndDate) != ""
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h BookingHandler) Create(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		badRequest(c, "listingId, startDate and endDate are required")
		return
	}
	start, okStart := parseDay(req.StartDate)
	end, okEnd := parseDay(req.EndDate)
	if !okStart || !okEnd {
		badRequest(c, "dates must be YYYY-MM-DD or RFC 3339")
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		ListingID:       req.ListingID,
		BorrowerID:      caller.ID,
		StartDate:       start,
		EndDate:         end,
		Message:         req.Message,
		IdempotencyKeyV: c.GetHeader(headerIdempotencyKey),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.ListMyBookingsQuery, dto.MyBookings](c.Request.Context(), h.Queries, bookingapp.ListMyBookingsQuery{UserID: caller.ID})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) SetStatus(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	cmd := bookingapp.SetBookingStatusCommand{
		BookingID: c.Param("id"),
		CallerID:  caller.ID,
		Status:    req.Status,
	}
	result, err := commands.Dispatch[bookingapp.SetBookingStatusCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
