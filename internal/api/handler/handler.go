package handler

import "college-schedule/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Room      *RoomHandler
	Schedule  *ScheduleHandler
	Doctor    *DoctorHandler
	Directory *DirectoryHandler
	Public    *PublicHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
// uploadLimit 为课表文件上传上限（字节）
func NewHandler(svc *service.Service, uploadLimit int64) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Room:      NewRoomHandler(svc.Room),
		Schedule:  NewScheduleHandler(svc.Schedule, uploadLimit),
		Doctor:    NewDoctorHandler(svc.Doctor),
		Directory: NewDirectoryHandler(svc.Directory),
		Public:    NewPublicHandler(svc.Public),
		Export:    NewExportHandler(svc.Export),
	}
}
