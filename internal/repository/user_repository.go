package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/observability"

	"gorm.io/gorm"
)

// UniqueField names a column that identifies at most one user.
type UniqueField string

const (
	UniqueFieldUsername UniqueField = "username"
	UniqueFieldEmail    UniqueField = "email"
	UniqueFieldGoogleID UniqueField = "google_id"
)

func (f UniqueField) valid() bool {
	switch f {
	case UniqueFieldUsername, UniqueFieldEmail, UniqueFieldGoogleID:
		return true
	}
	return false
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUnique(ctx context.Context, field UniqueField, value string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id uint, fields map[string]any) (*domain.User, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByUnique(ctx context.Context, field UniqueField, value string) (*domain.User, error) {
	if !field.valid() {
		return nil, fmt.Errorf("unsupported unique field %q", field)
	}
	var u domain.User
	err := r.db.WithContext(ctx).Where(string(field)+" = ?", value).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_"+string(field), "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_"+string(field), "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_"+string(field), "success")
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "create", "error")
		return classifyWriteError(err)
	}
	observability.RecordRepositoryOperation(ctx, "user", "create", "success")
	return nil
}

// Update applies column updates (keyed by column name) and returns the fresh row.
func (r *GormUserRepository) Update(ctx context.Context, id uint, fields map[string]any) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "user", "update", "error")
		return nil, classifyWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "user", "update", "not_found")
		return nil, ErrUserNotFound
	}
	observability.RecordRepositoryOperation(ctx, "user", "update", "success")
	return r.FindByID(ctx, id)
}
