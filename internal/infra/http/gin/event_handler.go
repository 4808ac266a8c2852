package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	eventapp "campusconnect/internal/app/handlers/events"
	"campusconnect/internal/app/queries"
)

// EventHandler serves the campus event board.
type EventHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type eventRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	DateTime          string `json:"dateTime"`
	Venue             string `json:"venue"`
	Poster            string `json:"poster"`
	MaxAttendees      int    `json:"maxAttendees"`
	SnakeDateTime     string `json:"date_time"`
	SnakeMaxAttendees int    `json:"max_attendees"`
}

func (r eventRequest) payload() (eventapp.EventPayload, bool) {
	var at time.Time
	if raw := either(r.DateTime, r.SnakeDateTime); strings.TrimSpace(raw) != "" {
		parsed, ok := parseDay(raw)
		if !ok {
			return eventapp.EventPayload{}, false
		}
		at = parsed
	}
	maxAttendees := r.MaxAttendees
	if maxAttendees == 0 {
		maxAttendees = r.SnakeMaxAttendees
	}
	return eventapp.EventPayload{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Category:     strings.TrimSpace(r.Category),
		DateTime:     at,
		Venue:        strings.TrimSpace(r.Venue),
		Poster:       strings.TrimSpace(r.Poster),
		MaxAttendees: maxAttendees,
	}, true
}

func (h EventHandler) List(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	query := eventapp.ListEventsQuery{Category: strings.ToLower(strings.TrimSpace(c.Query("category")))}
	result, err := queries.Ask[eventapp.ListEventsQuery, dto.EventCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h EventHandler) Get(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	result, err := queries.Ask[eventapp.GetEventQuery, dto.Event](c.Request.Context(), h.Queries, eventapp.GetEventQuery{EventID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h EventHandler) Create(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	payload, ok := req.payload()
	if !ok {
		badRequest(c, "dateTime must be YYYY-MM-DD or RFC 3339")
		return
	}
	cmd := eventapp.CreateEventCommand{OrganizerID: caller.ID, Payload: payload}
	result, err := commands.Dispatch[eventapp.CreateEventCommand, *dto.Event](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ToggleInterest flips the caller's interest in an event.
func (h EventHandler) ToggleInterest(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	cmd := eventapp.ToggleInterestCommand{UserID: caller.ID, EventID: c.Param("id")}
	result, err := commands.Dispatch[eventapp.ToggleInterestCommand, *dto.Interest](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h EventHandler) Delete(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	cmd := eventapp.DeleteEventCommand{CallerID: caller.ID, EventID: c.Param("id")}
	result, err := commands.Dispatch[eventapp.DeleteEventCommand, *eventapp.DeleteEventResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ EventHTTP = EventHandler{}
