package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campusconnect/internal/app/handlers/listings"
	"campusconnect/internal/app/middleware"
	authsvc "campusconnect/internal/app/services/auth"
	domainavailability "campusconnect/internal/domain/availability"
	domainbooking "campusconnect/internal/domain/booking"
	domainevents "campusconnect/internal/domain/events"
	domainlistings "campusconnect/internal/domain/listings"
	domainreviews "campusconnect/internal/domain/reviews"
	"campusconnect/internal/domain/shared/daterange"
	domainuser "campusconnect/internal/domain/user"
	mongostore "campusconnect/internal/infra/db/mongo"
	"campusconnect/internal/infra/storage/s3"
	"campusconnect/internal/infra/validation"
)

var (
	notFoundErrors = []error{
		domainlistings.ErrNotFound,
		domainbooking.ErrNotFound,
		domainreviews.ErrNotFound,
		domainuser.ErrNotFound,
		domainavailability.ErrListingNotFound,
		domainevents.ErrNotFound,
	}
	badRequestErrors = []error{
		domainbooking.ErrUnavailable,
		domainbooking.ErrSelfBooking,
		domainbooking.ErrDateConflict,
		domainbooking.ErrNotCompleted,
		domainbooking.ErrAlreadyReviewed,
		daterange.ErrInvalidRange,
		domainreviews.ErrInvalidRating,
		validation.ErrInvalid,
		domainlistings.ErrTitleRequired,
		domainlistings.ErrDescriptionNeeded,
		domainlistings.ErrLocationRequired,
		domainlistings.ErrPricePerDay,
		domainlistings.ErrInvalidCategory,
		domainlistings.ErrInvalidCondition,
		domainevents.ErrTitleRequired,
		domainevents.ErrDescriptionRequired,
		domainevents.ErrVenueRequired,
		domainevents.ErrDateTimeRequired,
		domainevents.ErrInvalidCategory,
		domainevents.ErrMaxAttendees,
		domainuser.ErrEmailRequired,
		domainuser.ErrNameRequired,
		domainuser.ErrEmailAlreadyUsed,
		authsvc.ErrPasswordTooShort,
		authsvc.ErrCollegeEmail,
		s3.ErrUnsupportedMimeType,
	}
	forbiddenErrors = []error{
		domainbooking.ErrUnauthorized,
		domainlistings.ErrNotOwner,
		domainevents.ErrNotOrganizer,
	}
	conflictErrors = []error{
		domainbooking.ErrInvalidTransition,
		middleware.ErrIdempotencyReuse,
		mongostore.ErrConcurrentUpdate,
		domainavailability.ErrLockNotAcquired,
	}
	unauthorizedErrors = []error{
		authsvc.ErrInvalidCredentials,
		middleware.ErrUnauthenticated,
	}
	unavailableErrors = []error{
		listings.ErrUploaderUnavailable,
		s3.ErrNotConfigured,
	}
)

func statusFor(err error) int {
	switch {
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case matchesAny(err, badRequestErrors):
		return http.StatusBadRequest
	case matchesAny(err, forbiddenErrors):
		return http.StatusForbidden
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	case matchesAny(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case matchesAny(err, unavailableErrors):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response. Internal errors are logged and
// their message is not exposed.
func handleError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
