package handler

import (
	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
	"college-schedule/backend/pkg/response"
)

// RoomHandler 教室模块 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 教室列表（院长全部，其余本院系）
// GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	rooms, err := h.roomSvc.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// GetRoom 教室详情
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	room, err := h.roomSvc.Get(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, room)
}

// CreateRoom 创建教室
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateRoom 更新教室
// PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除教室
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.roomSvc.Delete(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetQR 教室二维码信息（后端生成，原样透传）
// GET /api/v1/rooms/:id/qr
func (h *RoomHandler) GetQR(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	qr, err := h.roomSvc.QR(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, qr)
}

// RegenerateQR 重新生成二维码
// POST /api/v1/rooms/:id/qr
func (h *RoomHandler) RegenerateQR(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	qr, err := h.roomSvc.RegenerateQR(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, qr)
}
