package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	reviewapp "campusconnect/internal/app/handlers/reviews"
	"campusconnect/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	BookingID       string `json:"bookingId"`
	RevieweeID      string `json:"revieweeId"`
	SnakeBookingID  string `json:"booking_id"`
	SnakeRevieweeID string `json:"reviewee_id"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment"`
}

func (r *submitReviewRequest) normalize() bool {
	r.BookingID = strings.TrimSpace(either(r.BookingID, r.SnakeBookingID))
	r.RevieweeID = strings.TrimSpace(either(r.RevieweeID, r.SnakeRevieweeID))
	return r.BookingID != "" && r.RevieweeID != ""
}

func (h ReviewHandler) Submit(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		badRequest(c, "bookingId and revieweeId are required")
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		BookingID:  req.BookingID,
		ReviewerID: caller.ID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ForUser(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	query := reviewapp.ListUserReviewsQuery{UserID: c.Param("userId")}
	result, err := queries.Ask[reviewapp.ListUserReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}
