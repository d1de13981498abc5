package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"planboard/backend/internal/model"
)

// AvailabilityExceptionRepository 日期例外数据访问接口
type AvailabilityExceptionRepository interface {
	Create(ctx context.Context, ex *model.AvailabilityException) error
	GetByID(ctx context.Context, id string) (*model.AvailabilityException, error)
	ListByResource(ctx context.Context, resourceID string) ([]model.AvailabilityException, error)
	// ListActiveByResourceAndRange 某资源在闭区间内的有效例外；start/end 为 nil 时不限定对应边界
	ListActiveByResourceAndRange(ctx context.Context, resourceID string, start, end *time.Time) ([]model.AvailabilityException, error)
	Update(ctx context.Context, ex *model.AvailabilityException) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type availabilityExceptionRepo struct {
	db *gorm.DB
}

// NewAvailabilityExceptionRepo 创建 AvailabilityExceptionRepository 实例
func NewAvailabilityExceptionRepo(db *gorm.DB) AvailabilityExceptionRepository {
	return &availabilityExceptionRepo{db: db}
}

func (r *availabilityExceptionRepo) Create(ctx context.Context, ex *model.AvailabilityException) error {
	return r.db.WithContext(ctx).Create(ex).Error
}

func (r *availabilityExceptionRepo) GetByID(ctx context.Context, id string) (*model.AvailabilityException, error) {
	var ex model.AvailabilityException
	err := r.db.WithContext(ctx).Where("exception_id = ?", id).First(&ex).Error
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *availabilityExceptionRepo) ListByResource(ctx context.Context, resourceID string) ([]model.AvailabilityException, error) {
	var exceptions []model.AvailabilityException
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("exception_date ASC").
		Find(&exceptions).Error
	return exceptions, err
}

func (r *availabilityExceptionRepo) ListActiveByResourceAndRange(ctx context.Context, resourceID string, start, end *time.Time) ([]model.AvailabilityException, error) {
	var exceptions []model.AvailabilityException
	db := r.db.WithContext(ctx).
		Where("resource_id = ? AND is_active = ?", resourceID, true)
	if start != nil {
		db = db.Where("exception_date >= ?", *start)
	}
	if end != nil {
		db = db.Where("exception_date <= ?", *end)
	}
	err := db.Order("exception_date ASC").Find(&exceptions).Error
	return exceptions, err
}

func (r *availabilityExceptionRepo) Update(ctx context.Context, ex *model.AvailabilityException) error {
	return r.db.WithContext(ctx).Save(ex).Error
}

func (r *availabilityExceptionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.AvailabilityException{}).
		Where("exception_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
