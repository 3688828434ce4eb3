package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/observability"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	// Delete removes one session and reports whether this call removed it.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteMany removes every row matching id; absent rows are not an error.
	DeleteMany(ctx context.Context, id string) (int64, error)
	DeleteByUserID(ctx context.Context, userID uint) (int64, error)
	DeleteByIDForUser(ctx context.Context, userID uint, id string) (bool, error)
	ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]domain.Session, error)
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_id", "success")
	return &s, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "delete", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "session", "delete", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "session", "delete", "success")
	return true, nil
}

func (r *GormSessionRepository) DeleteMany(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "delete_many", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "delete_many", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) DeleteByUserID(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "delete_by_user_id", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "delete_by_user_id", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) DeleteByIDForUser(ctx context.Context, userID uint, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "delete_by_id_for_user", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "session", "delete_by_id_for_user", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "session", "delete_by_id_for_user", "success")
	return true, nil
}

func (r *GormSessionRepository) ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "list_active_by_user_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "list_active_by_user_id", "success")
	return sessions, nil
}

func (r *GormSessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "cleanup_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
