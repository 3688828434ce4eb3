package service

import (
	"context"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/repository"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, in GoogleIdentity) (*GoogleAuthResult, error)
	Refresh(ctx context.Context, sessionID, rawToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) (*LogoutResult, error)
}

type UserServiceInterface interface {
	Profile(ctx context.Context, userID uint) (*PublicUser, error)
	UpdateFullName(ctx context.Context, userID uint, fullName string) (*PublicUser, error)
	UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*PublicUser, error)
	UpdatePhoto(ctx context.Context, userID uint, upload PhotoUpload) (*PublicUser, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	BindPassword(ctx context.Context, userID uint, in BindPasswordInput) (*PublicUser, error)
	BindGoogle(ctx context.Context, userID uint, googleID, email string) (*PublicUser, error)
	AddFavorite(ctx context.Context, userID uint, surah, ayah int) (*domain.Favorite, error)
	DeleteFavorite(ctx context.Context, userID uint, surah, ayah int) error
	ListFavorites(ctx context.Context, userID uint, page, pageSize int) (repository.PageResult[domain.Favorite], error)
}

type SessionServiceInterface interface {
	ListActiveSessions(ctx context.Context, userID uint, currentSessionID string) ([]SessionView, error)
	RevokeSession(ctx context.Context, userID uint, sessionID string) error
}

var (
	_ AuthServiceInterface    = (*AuthService)(nil)
	_ UserServiceInterface    = (*UserService)(nil)
	_ SessionServiceInterface = (*SessionService)(nil)
)
