package repository

import (
	"context"

	"gorm.io/gorm"

	"planboard/backend/internal/model"
)

// WorkScheduleRepository 每周工作模式数据访问接口
type WorkScheduleRepository interface {
	ListByResource(ctx context.Context, resourceID string) ([]model.WorkSchedule, error)
	GetByID(ctx context.Context, id string) (*model.WorkSchedule, error)
	// ReplaceByResource 在单个事务中全量替换某资源的每周模式
	ReplaceByResource(ctx context.Context, resourceID string, schedules []model.WorkSchedule) error
	Update(ctx context.Context, schedule *model.WorkSchedule) error
}

type workScheduleRepo struct {
	db *gorm.DB
}

// NewWorkScheduleRepo 创建 WorkScheduleRepository 实例
func NewWorkScheduleRepo(db *gorm.DB) WorkScheduleRepository {
	return &workScheduleRepo{db: db}
}

func (r *workScheduleRepo) ListByResource(ctx context.Context, resourceID string) ([]model.WorkSchedule, error) {
	var schedules []model.WorkSchedule
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("day_of_week ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *workScheduleRepo) GetByID(ctx context.Context, id string) (*model.WorkSchedule, error) {
	var schedule model.WorkSchedule
	err := r.db.WithContext(ctx).Where("schedule_id = ?", id).First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ReplaceByResource 删除旧模式并批量插入新模式（事务保证原子性）
func (r *workScheduleRepo) ReplaceByResource(ctx context.Context, resourceID string, schedules []model.WorkSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("resource_id = ?", resourceID).
			Delete(&model.WorkSchedule{}).Error; err != nil {
			return err
		}
		if len(schedules) == 0 {
			return nil
		}
		return tx.Create(&schedules).Error
	})
}

func (r *workScheduleRepo) Update(ctx context.Context, schedule *model.WorkSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}
