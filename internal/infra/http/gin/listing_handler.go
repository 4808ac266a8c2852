package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	listingapp "campusconnect/internal/app/handlers/listings"
	"campusconnect/internal/app/queries"
)

// ListingHandler wires listing commands and queries to HTTP.
type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type listingRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	PricePerDay      int64    `json:"pricePerDay"`
	Photos           []string `json:"photos"`
	Location         string   `json:"location"`
	Condition        string   `json:"condition"`
	IsAvailable      *bool    `json:"isAvailable"`
	SnakePricePerDay int64    `json:"price_per_day"`
	SnakeIsAvailable *bool    `json:"is_available"`
}

func (r listingRequest) payload() listingapp.ListingPayload {
	if r.PricePerDay == 0 {
		r.PricePerDay = r.SnakePricePerDay
	}
	if r.IsAvailable == nil {
		r.IsAvailable = r.SnakeIsAvailable
	}
	return listingapp.ListingPayload{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		PricePerDay: r.PricePerDay,
		Photos:      r.Photos,
		Location:    strings.TrimSpace(r.Location),
		Condition:   strings.TrimSpace(r.Condition),
		IsAvailable: r.IsAvailable,
	}
}

// Search responds with listings filtered by the query string.
func (h ListingHandler) Search(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	query := listingapp.SearchListingsQuery{
		Text:          c.Query("search"),
		Category:      c.Query("category"),
		MinPrice:      parseInt64(either(c.Query("minPrice"), c.Query("min_price"))),
		MaxPrice:      parseInt64(either(c.Query("maxPrice"), c.Query("max_price"))),
		OnlyAvailable: c.Query("available") == "true",
		Limit:         parseIntWithDefault(c.Query("limit"), 50),
		Offset:        parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.SearchListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Mine(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[listingapp.ListMyListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, listingapp.ListMyListingsQuery{OwnerID: caller.ID})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, listingapp.GetListingQuery{ListingID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Create(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := listingapp.CreateListingCommand{OwnerID: caller.ID, Payload: req.payload()}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Update(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := listingapp.UpdateListingCommand{CallerID: caller.ID, ListingID: c.Param("id"), Payload: req.payload()}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Delete(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	cmd := listingapp.DeleteListingCommand{CallerID: caller.ID, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.DeleteListingCommand, *listingapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPhoto accepts a multipart "photo" field and appends its URL to the listing.
func (h ListingHandler) UploadPhoto(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	header, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, "photo file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "photo file is unreadable")
		return
	}
	defer file.Close()

	cmd := listingapp.UploadListingPhotoCommand{
		CallerID:    caller.ID,
		ListingID:   c.Param("id"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	result, err := commands.Dispatch[listingapp.UploadListingPhotoCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ListingHTTP = ListingHandler{}
