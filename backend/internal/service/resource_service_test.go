package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"planboard/backend/internal/dto"
	"planboard/backend/internal/model"
	"planboard/backend/internal/repository"
	pkgerrors "planboard/backend/pkg/errors"
)

func newResourceEnv() (ResourceService, *repository.Repository, *mockCache) {
	repo := newTestRepository()
	cache := newMockCache()
	repo.Organization.Create(context.Background(), &model.Organization{
		OrgID: testOrgID, Name: "Acme", Slug: "acme", Currency: "USD",
	})
	return NewResourceService(repo, cache, zap.NewNop()), repo, cache
}

func TestResourceService_Create_Defaults(t *testing.T) {
	svc, _, _ := newResourceEnv()

	got, err := svc.Create(context.Background(), testOrgID, &dto.CreateResourceRequest{
		Name:              "张三",
		DefaultHourlyRate: 50,
	}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}
	if !got.IsActive {
		t.Error("新资源应默认激活")
	}
	if got.Currency != "USD" {
		t.Errorf("未指定币种时应回退 USD，实际=%s", got.Currency)
	}
	if got.Version != 1 {
		t.Errorf("初始版本应为 1，实际=%d", got.Version)
	}
}

func TestResourceService_Create_ForeignUserRejected(t *testing.T) {
	svc, repo, _ := newResourceEnv()
	ctx := context.Background()

	repo.Organization.Create(ctx, &model.Organization{OrgID: "org-other", Name: "Other", Slug: "other"})
	outsider := &model.User{OrgID: "org-other", Name: "外部用户", Email: "out@other.dev", PasswordHash: "x", Role: "member"}
	repo.User.Create(ctx, outsider)

	_, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{
		Name:   "非法关联",
		UserID: &outsider.UserID,
	}, "admin-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("关联他组织用户应视为不存在，实际=%v", err)
	}
}

func TestResourceService_Update_OptimisticLock(t *testing.T) {
	svc, _, _ := newResourceEnv()
	ctx := context.Background()

	created, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{Name: "张三"}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}

	name := "张三（改）"
	updated, err := svc.Update(ctx, testOrgID, created.ResourceID, &dto.UpdateResourceRequest{
		Name:    &name,
		Version: 1,
	}, "admin-1")
	if err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("版本应递增到 2，实际=%d", updated.Version)
	}

	// 携带过期版本再次更新
	_, err = svc.Update(ctx, testOrgID, created.ResourceID, &dto.UpdateResourceRequest{
		Name:    &name,
		Version: 1,
	}, "admin-1")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际=%v", err)
	}
}

func TestResourceService_Update_RateChangeInvalidatesCache(t *testing.T) {
	svc, _, cache := newResourceEnv()
	ctx := context.Background()

	created, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{Name: "张三", DefaultHourlyRate: 50}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}

	// 仅改名不触发失效
	name := "张三（改）"
	if _, err := svc.Update(ctx, testOrgID, created.ResourceID, &dto.UpdateResourceRequest{Name: &name, Version: 1}, "admin-1"); err != nil {
		t.Fatalf("改名失败: %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("改名不应失效缓存，实际失效 %d 次", len(cache.invalidated))
	}

	// 改费率触发失效
	rate := 60.0
	if _, err := svc.Update(ctx, testOrgID, created.ResourceID, &dto.UpdateResourceRequest{DefaultHourlyRate: &rate, Version: 2}, "admin-1"); err != nil {
		t.Fatalf("改费率失败: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != created.ResourceID {
		t.Errorf("改费率应失效该资源缓存，实际=%v", cache.invalidated)
	}
}

func TestResourceService_Delete_InvalidatesCache(t *testing.T) {
	svc, _, cache := newResourceEnv()
	ctx := context.Background()

	created, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{Name: "张三"}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}

	if err := svc.Delete(ctx, testOrgID, created.ResourceID, "admin-1"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("删除应失效缓存，实际失效 %d 次", len(cache.invalidated))
	}
	if _, err := svc.GetByID(ctx, testOrgID, created.ResourceID); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("删除后读取应为不存在，实际=%v", err)
	}
}

func TestResourceService_List_ActiveOnly(t *testing.T) {
	svc, _, _ := newResourceEnv()
	ctx := context.Background()

	active, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{Name: "在岗"}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}
	idle, err := svc.Create(ctx, testOrgID, &dto.CreateResourceRequest{Name: "停用"}, "admin-1")
	if err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}
	off := false
	if _, err := svc.Update(ctx, testOrgID, idle.ResourceID, &dto.UpdateResourceRequest{IsActive: &off, Version: 1}, "admin-1"); err != nil {
		t.Fatalf("停用失败: %v", err)
	}

	all, err := svc.ListByOrg(ctx, testOrgID, false)
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("期望 2 条资源，实际=%d", len(all))
	}

	onlyActive, err := svc.ListByOrg(ctx, testOrgID, true)
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].ResourceID != active.ResourceID {
		t.Errorf("仅激活过滤不符: %+v", onlyActive)
	}
}
