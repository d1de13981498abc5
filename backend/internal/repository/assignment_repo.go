package repository

import (
	"context"

	"gorm.io/gorm"

	"planboard/backend/internal/model"
)

// AssignmentRepository 项目分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.ProjectAssignment) error
	GetByID(ctx context.Context, id string) (*model.ProjectAssignment, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ProjectAssignment, error)
	ListByResource(ctx context.Context, resourceID string) ([]model.ProjectAssignment, error)
	Update(ctx context.Context, assignment *model.ProjectAssignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.ProjectAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.ProjectAssignment, error) {
	var assignment model.ProjectAssignment
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Resource").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListByProject(ctx context.Context, projectID string) ([]model.ProjectAssignment, error) {
	var assignments []model.ProjectAssignment
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("project_id = ?", projectID).
		Order("start_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByResource(ctx context.Context, resourceID string) ([]model.ProjectAssignment, error) {
	var assignments []model.ProjectAssignment
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("resource_id = ?", resourceID).
		Order("start_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.ProjectAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ProjectAssignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
