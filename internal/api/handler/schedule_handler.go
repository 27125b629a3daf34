package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// 上传表单中的文件字段
const uploadField = "file"

// ScheduleHandler 课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	uploadLimit int64
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, uploadLimit int64) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, uploadLimit: uploadLimit}
}

// RoomMatrix 单个教室的周课表
// GET /api/v1/rooms/:id/matrix?study_type=&stage=
func (h *ScheduleHandler) RoomMatrix(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.MatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.scheduleSvc.RoomMatrix(c.Request.Context(), sess, roomID, &q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// WeeklyMatrix 多教室周视图
// GET /api/v1/schedules/weekly-matrix?room_ids=1,2&study_type=&stage=
func (h *ScheduleHandler) WeeklyMatrix(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var q dto.WeeklyMatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.scheduleSvc.WeeklyMatrix(c.Request.Context(), sess, &q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListSchedules 教室课程列表
// GET /api/v1/rooms/:id/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), sess, roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateSchedule 创建课程（单教师或多教师）
// POST /api/v1/rooms/:id/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.scheduleSvc.Create(c.Request.Context(), sess, roomID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, rec)
}

// UpdateSchedule 更新课程
// PUT /api/v1/rooms/:id/schedules/:sid
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := pathID(c, "sid")
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.scheduleSvc.Update(c.Request.Context(), sess, roomID, scheduleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, rec)
}

// DeleteSchedule 删除课程
// DELETE /api/v1/rooms/:id/schedules/:sid
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := pathID(c, "sid")
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), sess, roomID, scheduleID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// PostponeSchedule 延期课程
// POST /api/v1/rooms/:id/schedules/:sid/postpone
func (h *ScheduleHandler) PostponeSchedule(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := pathID(c, "sid")
	if !ok {
		return
	}

	var req dto.PostponeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.scheduleSvc.Postpone(c.Request.Context(), sess, roomID, scheduleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, rec)
}

// UploadSchedules 上传课表文件（xlsx）
// POST /api/v1/rooms/:id/schedules/upload
func (h *ScheduleHandler) UploadSchedules(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		bindFailed(c, err)
		return
	}
	if h.uploadLimit > 0 && fh.Size > h.uploadLimit {
		response.Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, msgBodyTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		bindFailed(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.scheduleSvc.Upload(c.Request.Context(), sess, roomID, fh.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeleteAllSchedules 清空教室课程
// DELETE /api/v1/rooms/:id/schedules
func (h *ScheduleHandler) DeleteAllSchedules(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleSvc.DeleteAll(c.Request.Context(), sess, roomID); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
