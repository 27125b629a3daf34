package handler

import (
	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// DirectoryHandler 用户、院系、督导管理 HTTP 处理器
type DirectoryHandler struct {
	dirSvc service.DirectoryService
}

// NewDirectoryHandler 创建 DirectoryHandler
func NewDirectoryHandler(dirSvc service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{dirSvc: dirSvc}
}

// ── 用户（院长） ──

// ListUsers 用户列表
// GET /api/v1/dean/users?role=&keyword=&page=&page_size=
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.dirSvc.ListUsers(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// CreateUser 创建用户
// POST /api/v1/dean/users
func (h *DirectoryHandler) CreateUser(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.dirSvc.CreateUser(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, user)
}

// UpdateUser 更新用户
// PUT /api/v1/dean/users/:id
func (h *DirectoryHandler) UpdateUser(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.dirSvc.UpdateUser(c.Request.Context(), sess, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/dean/users/:id
func (h *DirectoryHandler) DeleteUser(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.dirSvc.DeleteUser(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 院系 ──

// ListDepartments 院系列表
// GET /api/v1/dean/departments
func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	list, err := h.dirSvc.ListDepartments(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateDepartment 创建院系
// POST /api/v1/dean/departments
func (h *DirectoryHandler) CreateDepartment(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	dept, err := h.dirSvc.CreateDepartment(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, dept)
}

// DeleteDepartment 删除院系
// DELETE /api/v1/dean/departments/:id
func (h *DirectoryHandler) DeleteDepartment(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.dirSvc.DeleteDepartment(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 督导（系主任） ──

// ListSupervisors 本院系督导
// GET /api/v1/department/supervisors
func (h *DirectoryHandler) ListSupervisors(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	list, err := h.dirSvc.ListSupervisors(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateSupervisor 创建督导
// POST /api/v1/department/supervisors
func (h *DirectoryHandler) CreateSupervisor(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.SupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.dirSvc.CreateSupervisor(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, user)
}

// DeleteSupervisor 删除督导
// DELETE /api/v1/department/supervisors/:id
func (h *DirectoryHandler) DeleteSupervisor(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.dirSvc.DeleteSupervisor(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
