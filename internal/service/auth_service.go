package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/NaufalH27/inquran-be/internal/service")

// IdentifierKind selects the unique field a password login looks up.
type IdentifierKind string

const (
	IdentifierUsername IdentifierKind = "username"
	IdentifierEmail    IdentifierKind = "email"
)

type Identifier struct {
	Kind  IdentifierKind
	Value string
}

func UsernameIdentifier(v string) Identifier { return Identifier{Kind: IdentifierUsername, Value: v} }

func EmailIdentifier(v string) Identifier { return Identifier{Kind: IdentifierEmail, Value: v} }

func (i Identifier) field() (repository.UniqueField, bool) {
	switch i.Kind {
	case IdentifierUsername:
		return repository.UniqueFieldUsername, true
	case IdentifierEmail:
		return repository.UniqueFieldEmail, true
	}
	return "", false
}

type LoginInput struct {
	Identifier Identifier
	Password   string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// GoogleIdentity is a federated identity already verified upstream.
type GoogleIdentity struct {
	GoogleID string
	Email    string
	FullName *string
}

type AuthResult struct {
	Tokens *TokenPair `json:"tokens"`
	User   PublicUser `json:"user"`
}

type GoogleAuthResult struct {
	Tokens    *TokenPair `json:"tokens"`
	User      PublicUser `json:"user"`
	IsNewUser bool       `json:"isNewUser"`
}

type LogoutResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AuthService is the session authority: it owns login, registration,
// federated sign-in, refresh rotation and logout.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenService
	hasher   security.PasswordHasher
	missing  IdentifierLookupCache
	photos   PhotoURLResolver
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *TokenService,
	hasher security.PasswordHasher,
	missing IdentifierLookupCache,
	photos PhotoURLResolver,
) *AuthService {
	if missing == nil {
		missing = NewNoopIdentifierLookupCache()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		missing:  missing,
		photos:   photos,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (result *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.login", trace.WithAttributes(attribute.String("auth.identifier_kind", string(in.Identifier.Kind))))
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordAuthLogin("password", statusOf(err)) }()

	field, ok := in.Identifier.field()
	if !ok {
		return nil, loginFailure(ErrIdentifierNotFound)
	}
	kind := string(in.Identifier.Kind)

	if hit, cacheErr := s.missing.IsKnownMissing(ctx, kind, in.Identifier.Value); cacheErr != nil {
		slog.WarnContext(ctx, "identifier lookup cache read failed", "error", cacheErr)
	} else if hit {
		observability.RecordNegativeLookup(ctx, kind, "hit")
		s.burnDummyVerify(in.Password)
		return nil, loginFailure(ErrIdentifierNotFound)
	}

	user, err := s.users.FindByUnique(ctx, field, in.Identifier.Value)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if cacheErr := s.missing.MarkMissing(ctx, kind, in.Identifier.Value); cacheErr != nil {
				slog.WarnContext(ctx, "identifier lookup cache write failed", "error", cacheErr)
			} else {
				observability.RecordNegativeLookup(ctx, kind, "stored")
			}
			s.burnDummyVerify(in.Password)
			return nil, loginFailure(ErrIdentifierNotFound)
		}
		return nil, err
	}
	if !user.HasPassword() {
		s.burnDummyVerify(in.Password)
		return nil, loginFailure(ErrNoPasswordMethod)
	}
	if !s.hasher.Verify(in.Password, *user.PasswordHash) {
		return nil, loginFailure(ErrBadCredentials)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (result *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordAuthRegister("password", statusOf(err)) }()

	// Friendlier errors only; the unique indexes are what enforce this.
	if err := s.ensureFree(ctx, repository.UniqueFieldUsername, in.Username); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, repository.UniqueFieldEmail, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     ptr(in.Username),
		Email:        ptr(in.Email),
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if conflict := conflictFromDuplicate(err); conflict != nil {
			return nil, conflict
		}
		return nil, err
	}
	s.forgetMissing(ctx, IdentifierUsername, in.Username)
	s.forgetMissing(ctx, IdentifierEmail, in.Email)
	return s.issue(ctx, user)
}

// LoginWithGoogle signs in the account bound to the google id, creating a
// password-less account on first sight.
func (s *AuthService) LoginWithGoogle(ctx context.Context, in GoogleIdentity) (result *GoogleAuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.google")
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordAuthLogin("google", statusOf(err)) }()

	user, err := s.users.FindByUnique(ctx, repository.UniqueFieldGoogleID, in.GoogleID)
	isNew := false
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		user, isNew, err = s.createGoogleUser(ctx, in)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if isNew {
		observability.RecordAuthRegister("google", "success")
	}
	span.SetAttributes(attribute.Bool("auth.new_user", isNew))
	return &GoogleAuthResult{Tokens: res.Tokens, User: res.User, IsNewUser: isNew}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, in GoogleIdentity) (*domain.User, bool, error) {
	user := &domain.User{
		GoogleID:    ptr(in.GoogleID),
		GoogleEmail: ptr(in.Email),
		FullName:    in.FullName,
	}
	err := s.users.Create(ctx, user)
	if err == nil {
		return user, true, nil
	}
	var dup *repository.DuplicateKeyError
	if errors.As(err, &dup) && dup.Field == string(repository.UniqueFieldGoogleID) {
		// A concurrent first sign-in created the account; treat as login.
		existing, findErr := s.users.FindByUnique(ctx, repository.UniqueFieldGoogleID, in.GoogleID)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if conflict := conflictFromDuplicate(err); conflict != nil {
		return nil, false, conflict
	}
	return nil, false, err
}

// Refresh redeems a refresh token exactly once and rotates it.
func (s *AuthService) Refresh(ctx context.Context, sessionID, rawToken string) (result *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.refresh")
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordAuthRefresh(statusOf(err)) }()

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, refreshFailure(ErrInvalidOrExpired)
		}
		return nil, err
	}
	if session.IsExpiredAt(s.now()) {
		return nil, refreshFailure(ErrInvalidOrExpired)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, refreshFailure(ErrSessionUserNotFound)
		}
		return nil, err
	}
	if !s.tokens.Matches(session, rawToken) {
		return nil, refreshFailure(ErrInvalidOrExpired)
	}

	// The delete is the serialization point: only the caller that removed
	// the row may issue a new pair.
	removed, err := s.sessions.Delete(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, refreshFailure(ErrInvalidOrExpired)
	}
	return s.issue(ctx, user)
}

// Logout deletes the session. Unknown or already-deleted sessions succeed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (result *LogoutResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordAuthLogout(statusOf(err)) }()

	n, err := s.sessions.DeleteMany(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("auth.sessions_deleted", n))
	return &LogoutResult{Status: "OK", Message: "Logged out successfully"}, nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: pair, User: NewPublicUser(user, s.photos)}, nil
}

func (s *AuthService) ensureFree(ctx context.Context, field repository.UniqueField, value string) error {
	_, err := s.users.FindByUnique(ctx, field, value)
	switch {
	case err == nil:
		return &ConflictError{Field: clientFieldName(string(field))}
	case errors.Is(err, repository.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *AuthService) forgetMissing(ctx context.Context, kind IdentifierKind, value string) {
	if value == "" {
		return
	}
	if err := s.missing.Forget(ctx, string(kind), value); err != nil {
		slog.WarnContext(ctx, "identifier lookup cache invalidation failed", "kind", kind, "error", err)
	}
}

// burnDummyVerify spends one bcrypt comparison so unknown identifiers take
// as long as wrong passwords.
func (s *AuthService) burnDummyVerify(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password-0")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(password, s.dummyHash)
	}
}

func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	return authReason(err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("auth.failure_reason", authReason(err)))
		if authReason(err) == "internal" {
			span.RecordError(err)
			span.SetStatus(codes.Error, "internal error")
		}
	}
	span.End()
}
