package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"

	"golang.org/x/crypto/bcrypt"
)

type inMemoryUserRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{nextID: 1, byID: map[uint]*domain.User{}}
}

func uniqueValue(u *domain.User, field repository.UniqueField) *string {
	switch field {
	case repository.UniqueFieldUsername:
		return u.Username
	case repository.UniqueFieldEmail:
		return u.Email
	case repository.UniqueFieldGoogleID:
		return u.GoogleID
	}
	return nil
}

var uniqueFields = []repository.UniqueField{
	repository.UniqueFieldUsername, repository.UniqueFieldEmail, repository.UniqueFieldGoogleID,
}

func (r *inMemoryUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) FindByUnique(_ context.Context, field repository.UniqueField, value string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if v := uniqueValue(u, field); v != nil && *v == value {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *inMemoryUserRepo) conflict(candidate *domain.User, selfID uint) error {
	for _, u := range r.byID {
		if u.ID == selfID {
			continue
		}
		for _, f := range uniqueFields {
			a, b := uniqueValue(u, f), uniqueValue(candidate, f)
			if a != nil && b != nil && *a == *b {
				return &repository.DuplicateKeyError{Field: string(f)}
			}
		}
	}
	return nil
}

func (r *inMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(user, 0); err != nil {
		return err
	}
	user.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, id uint, fields map[string]any) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	next := *u
	for k, v := range fields {
		s := v.(string)
		switch k {
		case "username":
			next.Username = &s
		case "email":
			next.Email = &s
		case "full_name":
			next.FullName = &s
		case "password_hash":
			next.PasswordHash = &s
		case "photo":
			next.Photo = &s
		case "google_id":
			next.GoogleID = &s
		case "google_email":
			next.GoogleEmail = &s
		}
	}
	if err := r.conflict(&next, id); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = &next
	cp := next
	return &cp, nil
}

type inMemorySessionRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Session
}

func newInMemorySessionRepo() *inMemorySessionRepo {
	return &inMemorySessionRepo{byID: map[string]*domain.Session{}}
}

func (r *inMemorySessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now().UTC()
	r.byID[s.ID] = &cp
	return nil
}

func (r *inMemorySessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySessionRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *inMemorySessionRepo) DeleteMany(ctx context.Context, id string) (int64, error) {
	removed, err := r.Delete(ctx, id)
	if removed {
		return 1, err
	}
	return 0, err
}

func (r *inMemorySessionRepo) DeleteByUserID(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *inMemorySessionRepo) DeleteByIDForUser(_ context.Context, userID uint, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *inMemorySessionRepo) ListActiveByUserID(_ context.Context, userID uint, now time.Time) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Session{}
	for _, s := range r.byID {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemorySessionRepo) CleanupExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if !s.ExpiresAt.After(now) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *inMemorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *inMemorySessionRepo) expire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].ExpiresAt = time.Now().Add(-time.Minute)
}

type favoriteKey struct {
	userID      uint
	surah, ayah int
}

type inMemoryFavoriteRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[favoriteKey]domain.Favorite
}

func newInMemoryFavoriteRepo() *inMemoryFavoriteRepo {
	return &inMemoryFavoriteRepo{nextID: 1, items: map[favoriteKey]domain.Favorite{}}
}

func (r *inMemoryFavoriteRepo) Add(_ context.Context, fav *domain.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := favoriteKey{fav.UserID, fav.SurahNumber, fav.AyahNumber}
	if _, ok := r.items[k]; ok {
		return &repository.DuplicateKeyError{Field: "favorite"}
	}
	fav.ID = r.nextID
	r.nextID++
	fav.CreatedAt = time.Now().UTC()
	r.items[k] = *fav
	return nil
}

func (r *inMemoryFavoriteRepo) Delete(_ context.Context, userID uint, surah, ayah int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := favoriteKey{userID, surah, ayah}
	if _, ok := r.items[k]; !ok {
		return false, nil
	}
	delete(r.items, k)
	return true, nil
}

func (r *inMemoryFavoriteRepo) ListPaged(_ context.Context, userID uint, req repository.PageRequest) (repository.PageResult[domain.Favorite], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := repository.PageResult[domain.Favorite]{Items: []domain.Favorite{}, Page: req.Page, PageSize: req.PageSize}
	for _, f := range r.items {
		if f.UserID == userID {
			res.Items = append(res.Items, f)
		}
	}
	res.Total = int64(len(res.Items))
	return res, nil
}

type memoryPhotoStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryPhotoStore() *memoryPhotoStore {
	return &memoryPhotoStore{objects: map[string][]byte{}}
}

func (s *memoryPhotoStore) Save(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *memoryPhotoStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryPhotoStore) URL(key string) string { return "https://cdn.test/uploads/photos/" + key }

type authFixture struct {
	users     *inMemoryUserRepo
	sessions  *inMemorySessionRepo
	favorites *inMemoryFavoriteRepo
	photos    *memoryPhotoStore
	hasher    security.PasswordHasher
	jwt       *security.JWTManager
	tokens    *TokenService
	auth      *AuthService
	user      *UserService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     newInMemoryUserRepo(),
		sessions:  newInMemorySessionRepo(),
		favorites: newInMemoryFavoriteRepo(),
		photos:    newMemoryPhotoStore(),
		hasher:    security.NewBcryptHasher(bcrypt.MinCost),
		jwt:       security.NewJWTManager("inquran", "abcdefghijklmnopqrstuvwxyz123456"),
	}
	f.tokens = NewTokenService(f.jwt, f.hasher, f.sessions, 15*time.Minute)
	f.auth = NewAuthService(f.users, f.sessions, f.tokens, f.hasher, NewInMemoryIdentifierLookupCache(time.Minute), f.photos)
	f.user = NewUserService(f.users, f.sessions, f.favorites, f.hasher, f.photos, nil)
	return f
}
