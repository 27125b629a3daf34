package handler

import (
	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// PublicHandler 免登录查询 HTTP 处理器
type PublicHandler struct {
	publicSvc service.PublicService
}

// NewPublicHandler 创建 PublicHandler
func NewPublicHandler(publicSvc service.PublicService) *PublicHandler {
	return &PublicHandler{publicSvc: publicSvc}
}

// RoomMatrix 扫码查看教室课表
// GET /api/v1/public/rooms/:code/matrix
func (h *PublicHandler) RoomMatrix(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, CodeInvalidParams, msgInvalidParams)
		return
	}

	resp, err := h.publicSvc.RoomMatrix(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// StudentSchedule 学生按院系/阶段/班次查询课表
// GET /api/v1/public/students/schedule
func (h *PublicHandler) StudentSchedule(c *gin.Context) {
	var q dto.StudentScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.publicSvc.StudentSchedule(c.Request.Context(), &q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// LookupStudent 按学号查询学生信息
// GET /api/v1/public/students/lookup?student_id=
func (h *PublicHandler) LookupStudent(c *gin.Context) {
	var q dto.StudentLookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	student, err := h.publicSvc.LookupStudent(c.Request.Context(), q.StudentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, student)
}
