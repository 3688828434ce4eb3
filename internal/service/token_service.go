package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"

	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionID    string `json:"sessionId"`
}

// AccessTokenSigner is satisfied by *security.JWTManager.
type AccessTokenSigner interface {
	SignAccessToken(userID uint, username, email string, ttl time.Duration, jti string) (string, error)
}

// TokenService mints token pairs. Every successful Issue leaves exactly one
// new session row; a failed Issue leaves none.
type TokenService struct {
	signer      AccessTokenSigner
	hasher      security.PasswordHasher
	sessionRepo repository.SessionRepository
	accessTTL   time.Duration
	refreshTTL  time.Duration

	now       func() time.Time
	newID     func() string
	newSecret func() (string, error)
}

func NewTokenService(signer AccessTokenSigner, hasher security.PasswordHasher, sessionRepo repository.SessionRepository, accessTTL time.Duration) *TokenService {
	return &TokenService{
		signer:      signer,
		hasher:      hasher,
		sessionRepo: sessionRepo,
		accessTTL:   accessTTL,
		refreshTTL:  security.RefreshTokenTTL,
		now:         time.Now,
		newID:       uuid.NewString,
		newSecret:   security.NewRefreshToken,
	}
}

func (s *TokenService) Issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	raw, err := s.newSecret()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	hash, err := s.hasher.Hash(security.RefreshTokenDigest(raw))
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}
	session := &domain.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	access, err := s.signer.SignAccessToken(user.ID, deref(user.Username), deref(user.Email), s.accessTTL, session.ID)
	if err != nil {
		// A failed issue must not leave a usable session behind.
		if _, delErr := s.sessionRepo.DeleteMany(ctx, session.ID); delErr != nil {
			return nil, errors.Join(fmt.Errorf("sign access token: %w", err), delErr)
		}
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: raw, SessionID: session.ID}, nil
}

// Matches reports whether raw is the secret whose hash the session stores.
func (s *TokenService) Matches(session *domain.Session, raw string) bool {
	return s.hasher.Verify(security.RefreshTokenDigest(raw), session.TokenHash)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func ptr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
