package dto

import (
	"time"

	domainuser "campusconnect/internal/domain/user"
)

type UserProfile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	Department   string    `json:"department,omitempty"`
	Year         string    `json:"year,omitempty"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public card shown next to listings, bookings and reviews.
type UserSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Avatar       string  `json:"avatar,omitempty"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:           string(user.ID),
		Email:        user.Email,
		Name:         user.Name,
		Phone:        user.Phone,
		Avatar:       user.Avatar,
		Role:         string(user.Role),
		Bio:          user.Bio,
		Department:   user.Department,
		Year:         user.Year,
		Rating:       user.Rating,
		TotalReviews: user.TotalReviews,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// MapUserSummary falls back to the bare id when the user record is gone.
func MapUserSummary(id string, user *domainuser.User) UserSummary {
	if user == nil {
		return UserSummary{ID: id}
	}
	return UserSummary{
		ID:           string(user.ID),
		Name:         user.Name,
		Email:        user.Email,
		Avatar:       user.Avatar,
		Rating:       user.Rating,
		TotalReviews: user.TotalReviews,
	}
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{
		User:  MapUserProfile(user),
		Token: token,
	}
}
