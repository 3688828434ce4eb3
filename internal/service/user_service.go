package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"

	"github.com/google/uuid"
)

// PhotoStore persists profile photos under opaque keys.
type PhotoStore interface {
	PhotoURLResolver
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// ErrUnsupportedPhotoType rejects uploads whose content type has no known
// image extension.
var ErrUnsupportedPhotoType = errors.New("unsupported photo type")

// photoExtensions is the only source of stored photo extensions. The file
// server derives Content-Type from the extension, so it never comes from the
// client's filename.
var photoExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// PhotoExtension returns the stored extension for an accepted photo type.
func PhotoExtension(contentType string) (string, bool) {
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UpdateProfileInput struct {
	Username *string
	Email    *string
	FullName *string
}

type BindPasswordInput struct {
	Username *string
	Email    *string
	Password string
}

type UserService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	favorites repository.FavoriteRepository
	hasher    security.PasswordHasher
	photos    PhotoStore
	missing   IdentifierLookupCache
	now       func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	favorites repository.FavoriteRepository,
	hasher security.PasswordHasher,
	photos PhotoStore,
	missing IdentifierLookupCache,
) *UserService {
	if missing == nil {
		missing = NewNoopIdentifierLookupCache()
	}
	return &UserService{
		users:     users,
		sessions:  sessions,
		favorites: favorites,
		hasher:    hasher,
		photos:    photos,
		missing:   missing,
		now:       time.Now,
	}
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*PublicUser, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.public(user), nil
}

func (s *UserService) UpdateFullName(ctx context.Context, userID uint, fullName string) (*PublicUser, error) {
	return s.update(ctx, userID, map[string]any{"full_name": fullName})
}

// UpdateProfile changes any supplied field. Username and email must stay
// unique across other users; keeping one's own value is allowed.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*PublicUser, error) {
	fields := map[string]any{}
	if in.Username != nil {
		if err := s.ensureFreeFor(ctx, userID, repository.UniqueFieldUsername, *in.Username); err != nil {
			return nil, err
		}
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		if err := s.ensureFreeFor(ctx, userID, repository.UniqueFieldEmail, *in.Email); err != nil {
			return nil, err
		}
		fields["email"] = *in.Email
	}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if len(fields) == 0 {
		return s.Profile(ctx, userID)
	}
	out, err := s.update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		s.forget(ctx, IdentifierUsername, *in.Username)
	}
	if in.Email != nil {
		s.forget(ctx, IdentifierEmail, *in.Email)
	}
	return out, nil
}

// UpdatePhoto stores the upload, points the profile at it and removes the
// previous photo. A failed removal is logged, not returned.
func (s *UserService) UpdatePhoto(ctx context.Context, userID uint, upload PhotoUpload) (*PublicUser, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ext, ok := PhotoExtension(upload.ContentType)
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}
	key := s.photoKey(ext)
	if err := s.photos.Save(ctx, key, upload.ContentType, upload.Body, upload.Size); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}
	out, err := s.update(ctx, userID, map[string]any{"photo": key})
	if err != nil {
		_ = s.photos.Delete(ctx, key)
		return nil, err
	}
	if prev := deref(user.Photo); prev != "" && prev != key {
		if err := s.photos.Delete(ctx, prev); err != nil {
			slog.WarnContext(ctx, "remove previous photo failed", "user_id", userID, "error", err)
		}
	}
	return out, nil
}

// ChangePassword replaces a bound password and ends every session of the user.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return &AuthenticationError{Reason: ErrNoPasswordMethod, Message: "password login is not enabled for this account"}
	}
	if !s.hasher.Verify(oldPassword, *user.PasswordHash) {
		return &AuthenticationError{Reason: ErrBadCredentials, Message: "old password is incorrect"}
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.update(ctx, userID, map[string]any{"password_hash": hash}); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// BindPassword sets a password on an account that has none. A supplied
// username or email is stored with it and must be free, as in UpdateProfile.
func (s *UserService) BindPassword(ctx context.Context, userID uint, in BindPasswordInput) (*PublicUser, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasPassword() {
		return nil, &ConflictError{Field: "password"}
	}
	fields := map[string]any{}
	if in.Username != nil {
		if err := s.ensureFreeFor(ctx, userID, repository.UniqueFieldUsername, *in.Username); err != nil {
			return nil, err
		}
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		if err := s.ensureFreeFor(ctx, userID, repository.UniqueFieldEmail, *in.Email); err != nil {
			return nil, err
		}
		fields["email"] = *in.Email
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	fields["password_hash"] = hash
	out, err := s.update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		s.forget(ctx, IdentifierUsername, *in.Username)
	}
	if in.Email != nil {
		s.forget(ctx, IdentifierEmail, *in.Email)
	}
	return out, nil
}

func (s *UserService) BindGoogle(ctx context.Context, userID uint, googleID, email string) (*PublicUser, error) {
	if err := s.ensureFreeFor(ctx, userID, repository.UniqueFieldGoogleID, googleID); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, map[string]any{"google_id": googleID, "google_email": email})
}

func (s *UserService) AddFavorite(ctx context.Context, userID uint, surah, ayah int) (*domain.Favorite, error) {
	fav := &domain.Favorite{UserID: userID, SurahNumber: surah, AyahNumber: ayah}
	if err := s.favorites.Add(ctx, fav); err != nil {
		observability.RecordFavoriteMutation(ctx, "add", "error")
		if conflict := conflictFromDuplicate(err); conflict != nil {
			return nil, conflict
		}
		return nil, err
	}
	observability.RecordFavoriteMutation(ctx, "add", "success")
	return fav, nil
}

func (s *UserService) DeleteFavorite(ctx context.Context, userID uint, surah, ayah int) error {
	removed, err := s.favorites.Delete(ctx, userID, surah, ayah)
	if err != nil {
		observability.RecordFavoriteMutation(ctx, "delete", "error")
		return err
	}
	if !removed {
		observability.RecordFavoriteMutation(ctx, "delete", "not_found")
		return &NotFoundError{Resource: "favorite"}
	}
	observability.RecordFavoriteMutation(ctx, "delete", "success")
	return nil
}

func (s *UserService) ListFavorites(ctx context.Context, userID uint, page, pageSize int) (repository.PageResult[domain.Favorite], error) {
	return s.favorites.ListPaged(ctx, userID, repository.PageRequest{Page: page, PageSize: pageSize})
}

func (s *UserService) findUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) update(ctx context.Context, userID uint, fields map[string]any) (*PublicUser, error) {
	user, err := s.users.Update(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		if conflict := conflictFromDuplicate(err); conflict != nil {
			return nil, conflict
		}
		return nil, err
	}
	return s.public(user), nil
}

func (s *UserService) ensureFreeFor(ctx context.Context, userID uint, field repository.UniqueField, value string) error {
	other, err := s.users.FindByUnique(ctx, field, value)
	switch {
	case err == nil && other.ID != userID:
		return &ConflictError{Field: clientFieldName(string(field))}
	case err == nil, errors.Is(err, repository.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *UserService) forget(ctx context.Context, kind IdentifierKind, value string) {
	if err := s.missing.Forget(ctx, string(kind), value); err != nil {
		slog.WarnContext(ctx, "identifier lookup cache invalidation failed", "kind", kind, "error", err)
	}
}

func (s *UserService) public(user *domain.User) *PublicUser {
	var resolver PhotoURLResolver
	if s.photos != nil {
		resolver = s.photos
	}
	pu := NewPublicUser(user, resolver)
	return &pu
}

// photoKey follows photo-<unix ms>-<random><ext>.
func (s *UserService) photoKey(ext string) string {
	return fmt.Sprintf("photo-%d-%s%s", s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12], ext)
}
