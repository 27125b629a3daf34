package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/timetable"
)

// roomLister 按角色列出可见教室
type roomLister interface {
	ListRooms(ctx context.Context, sess *model.Session) ([]model.Room, error)
	ListDepartmentRooms(ctx context.Context, sess *model.Session) ([]model.Room, error)
}

// lectureCollector 并发拉取多个教室的课程并汇总
// 单个教室失败只记录日志并跳过，全部完成后再汇总
type lectureCollector struct {
	rooms     roomLister
	schedules ScheduleBackend
	workers   int
	logger    *zap.Logger
}

// collected 汇总结果，records 按教室顺序拼接
type collected struct {
	rooms   []model.Room
	records []model.LectureRecord
	failed  []model.ID
}

// visibleRooms 院长可见全部教室，其余角色只见本院系
func (c *lectureCollector) visibleRooms(ctx context.Context, sess *model.Session) ([]model.Room, error) {
	if sess != nil && model.Role(sess.Role) == model.RoleDean {
		return c.rooms.ListRooms(ctx, sess)
	}
	return c.rooms.ListDepartmentRooms(ctx, sess)
}

// allRooms 系统全部教室（可用性检查需要跨院系）
func (c *lectureCollector) allRooms(ctx context.Context, sess *model.Session) ([]model.Room, error) {
	return c.rooms.ListRooms(ctx, sess)
}

// collect 拉取指定教室的课程
func (c *lectureCollector) collect(ctx context.Context, sess *model.Session, rooms []model.Room) *collected {
	perRoom := make([][]model.LectureRecord, len(rooms))
	failed := make([]bool, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	if c.workers > 0 {
		g.SetLimit(c.workers)
	}

	// 每个 goroutine 只写自己的下标
	for i := range rooms {
		g.Go(func() error {
			recs, err := c.schedules.ListRoomSchedules(gctx, sess, rooms[i].ID)
			if err != nil {
				c.logger.Warn("拉取教室课程失败，已跳过",
					zap.String("room_id", rooms[i].ID.String()),
					zap.Error(err),
				)
				failed[i] = true
				return nil
			}
			for j := range recs {
				fillRoom(&recs[j], &rooms[i])
			}
			perRoom[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	out := &collected{rooms: rooms}
	for i := range rooms {
		if failed[i] {
			out.failed = append(out.failed, rooms[i].ID)
			continue
		}
		out.records = append(out.records, perRoom[i]...)
	}
	return out
}

// fillRoom 后端按教室返回时可能省略教室字段
func fillRoom(rec *model.LectureRecord, room *model.Room) {
	if rec.RoomID.Empty() {
		rec.RoomID = room.ID
	}
	if rec.RoomName == "" && rec.RoomID == room.ID {
		rec.RoomName = room.Name
	}
	if rec.RoomCode == "" && rec.RoomID == room.ID {
		rec.RoomCode = room.Code
	}
}

// filterRecords 按学习类型与阶段过滤，空条件不过滤
func filterRecords(records []model.LectureRecord, studyType model.StudyType, stage model.Stage) []model.LectureRecord {
	if studyType == "" && stage == "" {
		return records
	}
	out := make([]model.LectureRecord, 0, len(records))
	for _, r := range records {
		if studyType != "" && r.StudyType != studyType {
			continue
		}
		if stage != "" && r.AcademicStage != stage {
			continue
		}
		out = append(out, r)
	}
	return out
}

// needsRoomLookup 是否存在缺少目标教室名称的延期记录
func needsRoomLookup(records []model.LectureRecord) bool {
	for i := range records {
		r := &records[i]
		if r.IsPostponed && r.PostponedRoomName == "" && r.PostponedRoomCode == "" && !r.PostponedToRoomID.Empty() {
			return true
		}
	}
	return false
}

// buildMatrix 排序后构建矩阵并组装响应
func buildMatrix(records []model.LectureRecord, rooms []model.Room) (timetable.Matrix, []timetable.TimeSlot, []model.DayToken) {
	var lookup timetable.RoomLookup
	if len(rooms) > 0 {
		lookup = timetable.RoomsLookup(rooms)
	}
	sorted := timetable.SortForDisplay(records)
	return timetable.NewMatrixBuilder(lookup).BuildAuto(sorted)
}
