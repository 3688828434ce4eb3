package repository

import (
	"context"
	"errors"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/observability"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Add(ctx context.Context, fav *domain.Favorite) error
	Delete(ctx context.Context, userID uint, surah, ayah int) (bool, error)
	ListPaged(ctx context.Context, userID uint, req PageRequest) (PageResult[domain.Favorite], error)
}

type GormFavoriteRepository struct{ db *gorm.DB }

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository { return &GormFavoriteRepository{db: db} }

func (r *GormFavoriteRepository) Add(ctx context.Context, fav *domain.Favorite) error {
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "favorite", "add", "error")
		err = classifyWriteError(err)
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			dup.Field = "favorite"
		}
		return err
	}
	observability.RecordRepositoryOperation(ctx, "favorite", "add", "success")
	return nil
}

func (r *GormFavoriteRepository) Delete(ctx context.Context, userID uint, surah, ayah int) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND surah_number = ? AND ayah_number = ?", userID, surah, ayah).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "favorite", "delete", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "favorite", "delete", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "favorite", "delete", "success")
	return true, nil
}

func (r *GormFavoriteRepository) ListPaged(ctx context.Context, userID uint, req PageRequest) (PageResult[domain.Favorite], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.Favorite]{
		Items:    []domain.Favorite{},
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.WithContext(ctx).Model(&domain.Favorite{}).Where("user_id = ?", userID)
	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "favorite", "list_paged", "error")
		return PageResult[domain.Favorite]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "favorite", "list_paged", "error")
		return PageResult[domain.Favorite]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "favorite", "list_paged", "success")
	return result, nil
}
