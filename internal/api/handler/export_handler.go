package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoom 导出单个教室周课表
// GET /api/v1/export/rooms/:id?study_type=&stage=
func (h *ExportHandler) ExportRoom(c *gin.Context) {
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

	buf, filename, err := h.exportSvc.RoomMatrixXLSX(c.Request.Context(), sess, roomID, &q)
	if err != nil {
		respondError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// ExportWeekly 导出多教室周视图
// GET /api/v1/export/weekly?room_ids=&study_type=&stage=
func (h *ExportHandler) ExportWeekly(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var q dto.WeeklyMatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.WeeklyMatrixXLSX(c.Request.Context(), sess, &q)
	if err != nil {
		respondError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// sendXLSX 设置下载响应头
func sendXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
