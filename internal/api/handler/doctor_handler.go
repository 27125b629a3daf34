package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// DoctorHandler 教师模块 HTTP 处理器
type DoctorHandler struct {
	doctorSvc service.DoctorService
}

// NewDoctorHandler 创建 DoctorHandler
func NewDoctorHandler(doctorSvc service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorSvc: doctorSvc}
}

// ListDoctors 教师列表（分页）
// GET /api/v1/doctors?department_id=&keyword=&page=&page_size=
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.DoctorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.doctorSvc.List(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// DoctorsByDepartment 按院系分组的教师
// GET /api/v1/doctors/departments
func (h *DoctorHandler) DoctorsByDepartment(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	groups, err := h.doctorSvc.ByDepartment(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// CreateDoctor 创建教师
// POST /api/v1/doctors
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	doc, err := h.doctorSvc.Create(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, doc)
}

// UpdateDoctor 更新教师
// PUT /api/v1/doctors/:id
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	doc, err := h.doctorSvc.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, doc)
}

// DeleteDoctor 删除教师
// DELETE /api/v1/doctors/:id
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.doctorSvc.Delete(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Lectures 教师的全部课程
// GET /api/v1/doctors/:id/lectures
func (h *DoctorHandler) Lectures(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.doctorSvc.Lectures(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Availability 批量检查教师在候选时段是否空闲
// POST /api/v1/doctors/availability
func (h *DoctorHandler) Availability(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.doctorSvc.Availability(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// Calendar 导出教师课表日历
// GET /api/v1/doctors/:id/calendar.ics?from=2025-03-01&weeks=16
func (h *DoctorHandler) Calendar(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.doctorSvc.Calendar(c.Request.Context(), sess, id, &q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
