package reviews

import (
	"context"
	"time"

	"campusconnect/internal/app/uow"
	domainreviews "campusconnect/internal/domain/reviews"
	domainuser "campusconnect/internal/domain/user"
)

// recalculateUserRating recomputes the aggregate from every review the user
// received, including any saved earlier in this unit of work.
func recalculateUserRating(ctx context.Context, unit uow.UnitOfWork, userID string, now time.Time) (*domainuser.User, error) {
	received, err := unit.Reviews().ListByReviewee(ctx, userID)
	if err != nil {
		return nil, err
	}
	rating, total := domainreviews.Aggregate(received)

	user, err := unit.Users().ByID(ctx, domainuser.ID(userID))
	if err != nil {
		return nil, err
	}
	user.ApplyRating(rating, total, now)
	if err := unit.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
