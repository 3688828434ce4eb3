package request

import (
	"strings"

	"github.com/NaufalH27/inquran-be/internal/service"
)

const MaxPhotoBytes = 5 << 20

type UpdateFullNameRequest struct {
	FullName string `json:"fullName"`
}

func (r *UpdateFullNameRequest) Normalize() { r.FullName = strings.TrimSpace(r.FullName) }

func (r *UpdateFullNameRequest) Validate() []FieldError {
	var fe fieldErrors
	fe.fullName("fullName", r.FullName)
	return fe
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r.FullName != nil {
		v := strings.TrimSpace(*r.FullName)
		r.FullName = &v
	}
}

func (r *UpdateProfileRequest) Validate() []FieldError {
	var fe fieldErrors
	if r.Username != nil {
		fe.username("username", *r.Username)
	}
	if r.Email != nil {
		fe.email("email", *r.Email)
	}
	if r.FullName != nil {
		fe.fullName("fullName", *r.FullName)
	}
	return fe
}

func (r *UpdateProfileRequest) Input() service.UpdateProfileInput {
	return service.UpdateProfileInput{Username: r.Username, Email: r.Email, FullName: r.FullName}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() []FieldError {
	var fe fieldErrors
	if fe.required("oldPassword", r.OldPassword) {
		fe.maxLength("oldPassword", r.OldPassword, 255)
	}
	fe.password("newPassword", r.NewPassword)
	return fe
}

// BindPasswordRequest enables password login. Username and email may be set in
// the same call so an account created through google can log in right away.
type BindPasswordRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
}

func (r *BindPasswordRequest) Validate() []FieldError {
	var fe fieldErrors
	if r.Username != nil {
		fe.username("username", *r.Username)
	}
	if r.Email != nil {
		fe.email("email", *r.Email)
	}
	fe.password("password", r.Password)
	return fe
}

func (r *BindPasswordRequest) Input() service.BindPasswordInput {
	return service.BindPasswordInput{Username: r.Username, Email: r.Email, Password: r.Password}
}

type BindGoogleRequest struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
}

func (r *BindGoogleRequest) Validate() []FieldError {
	var fe fieldErrors
	if fe.required("googleId", r.GoogleID) {
		fe.maxLength("googleId", r.GoogleID, 255)
	}
	fe.email("email", r.Email)
	return fe
}

type FavoriteRequest struct {
	SurahNumber *int `json:"surah_number"`
	AyahNumber  *int `json:"ayah_number"`
}

func (r *FavoriteRequest) Validate() []FieldError {
	var fe fieldErrors
	switch {
	case r.SurahNumber == nil:
		fe.add("surah_number", "is required")
	case *r.SurahNumber < 1 || *r.SurahNumber > 114:
		fe.add("surah_number", "must be between 1 and 114")
	}
	switch {
	case r.AyahNumber == nil:
		fe.add("ayah_number", "is required")
	case *r.AyahNumber < 1:
		fe.add("ayah_number", "must be at least 1")
	}
	return fe
}

// ValidatePhoto checks an uploaded profile photo's declared type and size.
func ValidatePhoto(contentType string, size int64) []FieldError {
	var fe fieldErrors
	if _, ok := service.PhotoExtension(contentType); !ok {
		fe.add("photo", "only jpeg, png, gif, svg and webp images are allowed")
	}
	if size <= 0 {
		fe.add("photo", "is required")
	} else if size > MaxPhotoBytes {
		fe.add("photo", "must be at most 5 MB")
	}
	return fe
}
