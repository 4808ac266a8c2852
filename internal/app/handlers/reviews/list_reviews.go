package reviews

import (
	"context"
	"errors"
	"sort"

	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/queries"
	"campusconnect/internal/app/uow"
	domainuser "campusconnect/internal/domain/user"
)

const listUserReviewsKey = "reviews.user.list"

// ListUserReviewsQuery lists the reviews a user received.
type ListUserReviewsQuery struct {
	UserID string `validate:"required"`
}

func (q ListUserReviewsQuery) Key() string { return listUserReviewsKey }

type ListUserReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUserReviewsHandler) Handle(ctx context.Context, q ListUserReviewsQuery) (dto.ReviewCollection, error) {
	unit, ctx, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	defer unit.Close(ctx)

	subject, err := unit.Users().ByID(ctx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	received, err := unit.Reviews().ListByReviewee(ctx, q.UserID)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	sort.SliceStable(received, func(i, j int) bool {
		return received[i].CreatedAt.After(received[j].CreatedAt)
	})

	reviewers := make(map[string]*domainuser.User)
	items := make([]dto.Review, 0, len(received))
	for _, review := range received {
		reviewer, seen := reviewers[review.ReviewerID]
		if !seen {
			reviewer, err = unit.Users().ByID(ctx, domainuser.ID(review.ReviewerID))
			if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
				return dto.ReviewCollection{}, err
			}
			reviewers[review.ReviewerID] = reviewer
		}
		items = append(items, dto.MapReview(review, dto.MapUserSummary(review.ReviewerID, reviewer)))
	}
	return dto.ReviewCollection{
		Items:        items,
		Rating:       subject.Rating,
		TotalReviews: subject.TotalReviews,
	}, nil
}

var _ queries.Handler[ListUserReviewsQuery, dto.ReviewCollection] = (*ListUserReviewsHandler)(nil)
