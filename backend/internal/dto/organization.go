package dto

import "planboard/backend/internal/model"

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"required,max=50"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// UpdateOrganizationRequest 更新组织请求，指针字段表示部分更新
type UpdateOrganizationRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Currency *string `json:"currency" binding:"omitempty,len=3"`
}

// OrganizationResponse 组织响应
type OrganizationResponse struct {
	OrgID    string `json:"org_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
}

func ToOrganizationResponse(o *model.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrgID:    o.OrgID,
		Name:     o.Name,
		Slug:     o.Slug,
		Currency: o.Currency,
	}
}
