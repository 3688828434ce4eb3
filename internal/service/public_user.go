package service

import (
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
)

// PublicUser is the outward user shape. It has no password field at all.
type PublicUser struct {
	ID          uint      `json:"id"`
	Username    *string   `json:"username"`
	Email       *string   `json:"email"`
	FullName    *string   `json:"fullName"`
	PhotoURL    *string   `json:"photoUrl"`
	GoogleID    *string   `json:"googleId"`
	GoogleEmail *string   `json:"googleEmail"`
	HasPassword bool      `json:"hasPassword"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PhotoURLResolver turns a stored photo key into a client URL.
type PhotoURLResolver interface {
	URL(key string) string
}

func NewPublicUser(u *domain.User, photos PhotoURLResolver) PublicUser {
	pu := PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		GoogleID:    u.GoogleID,
		GoogleEmail: u.GoogleEmail,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Photo != nil && *u.Photo != "" && photos != nil {
		url := photos.URL(*u.Photo)
		pu.PhotoURL = &url
	}
	return pu
}
