package request

import (
	"strings"

	"github.com/NaufalH27/inquran-be/internal/service"
)

const (
	LoginTypeUsername = "username"
	LoginTypeEmail    = "email"
)

type LoginRequest struct {
	LoginType string `json:"loginType"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *LoginRequest) Validate() []FieldError {
	var fe fieldErrors
	switch r.LoginType {
	case LoginTypeUsername:
		if fe.required("username", r.Username) {
			fe.maxLength("username", r.Username, 255)
		}
	case LoginTypeEmail:
		if fe.required("email", r.Email) {
			fe.maxLength("email", r.Email, 255)
		}
	default:
		fe.add("loginType", "must be one of: username, email")
	}
	if fe.required("password", r.Password) {
		fe.maxLength("password", r.Password, 255)
	}
	return fe
}

// Input converts the request into the tagged identifier the service expects;
// the field not named by loginType is ignored.
func (r *LoginRequest) Input() service.LoginInput {
	id := service.UsernameIdentifier(r.Username)
	if r.LoginType == LoginTypeEmail {
		id = service.EmailIdentifier(r.Email)
	}
	return service.LoginInput{Identifier: id, Password: r.Password}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() []FieldError {
	var fe fieldErrors
	fe.username("username", r.Username)
	fe.email("email", r.Email)
	fe.password("password", r.Password)
	return fe
}

func (r *RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{Username: r.Username, Email: r.Email, Password: r.Password}
}

type GoogleLoginRequest struct {
	GoogleID string  `json:"googleId"`
	Email    string  `json:"email"`
	FullName *string `json:"fullName"`
}

func (r *GoogleLoginRequest) Normalize() {
	if r.FullName != nil {
		v := strings.TrimSpace(*r.FullName)
		r.FullName = &v
		if v == "" {
			r.FullName = nil
		}
	}
}

func (r *GoogleLoginRequest) Validate() []FieldError {
	var fe fieldErrors
	if fe.required("googleId", r.GoogleID) {
		fe.maxLength("googleId", r.GoogleID, 255)
	}
	fe.email("email", r.Email)
	if r.FullName != nil {
		fe.fullName("fullName", *r.FullName)
	}
	return fe
}

func (r *GoogleLoginRequest) Identity() service.GoogleIdentity {
	return service.GoogleIdentity{GoogleID: r.GoogleID, Email: r.Email, FullName: r.FullName}
}

type RefreshRequest struct {
	SessionID    string `json:"sessionId"`
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshRequest) Validate() []FieldError {
	var fe fieldErrors
	if fe.required("sessionId", r.SessionID) {
		fe.maxLength("sessionId", r.SessionID, 64)
	}
	if fe.required("refreshToken", r.RefreshToken) {
		fe.maxLength("refreshToken", r.RefreshToken, 255)
	}
	return fe
}

type LogoutRequest struct {
	SessionID string `json:"sessionId"`
}

func (r *LogoutRequest) Validate() []FieldError {
	var fe fieldErrors
	if fe.required("sessionId", r.SessionID) {
		fe.maxLength("sessionId", r.SessionID, 64)
	}
	return fe
}
