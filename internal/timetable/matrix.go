package timetable

import (
	"college-schedule/backend/internal/model"
)

// Matrix 周课表矩阵：星期 → "start-end" → 课程列表
// 多教室视图中同一单元格内的教室/阶段由列表元素区分，不再按键嵌套
type Matrix map[model.DayToken]map[string][]model.LectureRecord

// Cell 取单元格，不存在时返回 nil
func (m Matrix) Cell(day model.DayToken, slotKey string) []model.LectureRecord {
	row, ok := m[day]
	if !ok {
		return nil
	}
	return row[slotKey]
}

// Count 矩阵中的课程总数
func (m Matrix) Count() int {
	n := 0
	for _, row := range m {
		for _, cell := range row {
			n += len(cell)
		}
	}
	return n
}

// RoomRef 教室名称与编号
type RoomRef struct {
	Name string
	Code string
}

// RoomLookup 按 ID 查询教室，用于补全延期目标教室的展示字段
type RoomLookup func(id model.ID) (RoomRef, bool)

// RoomsLookup 由教室列表构造 RoomLookup
func RoomsLookup(rooms []model.Room) RoomLookup {
	idx := make(map[model.ID]RoomRef, len(rooms))
	for _, r := range rooms {
		idx[r.ID] = RoomRef{Name: r.Name, Code: r.Code}
	}
	return func(id model.ID) (RoomRef, bool) {
		ref, ok := idx[id]
		return ref, ok
	}
}

// MatrixBuilder 课表矩阵构建器
// 纯数据变换：不报错、不排序、不修改输入
type MatrixBuilder struct {
	rooms RoomLookup
}

// NewMatrixBuilder 创建构建器，rooms 可为 nil
func NewMatrixBuilder(rooms RoomLookup) *MatrixBuilder {
	return &MatrixBuilder{rooms: rooms}
}

// Build 构建矩阵
//
//   - 先为每个 (day, slot) 初始化空列表
//   - 延期课程只出现在延期日期对应星期的延期时段，原时段不放置
//   - 临时迁入课程与常规课程一样放在当前位置，来源信息随记录保留
//   - 延期信息不完整的记录按常规课程放在原时段
//   - 休息时段、单元格不存在的记录静默丢弃
//   - 单元格内保持输入顺序
func (b *MatrixBuilder) Build(records []model.LectureRecord, visibleSlots []TimeSlot, days []model.DayToken) Matrix {
	m := make(Matrix, len(days))
	for _, d := range days {
		row := make(map[string][]model.LectureRecord, len(visibleSlots))
		for _, s := range visibleSlots {
			row[s.Key()] = []model.LectureRecord{}
		}
		m[d] = row
	}

	for _, rec := range records {
		lec, err := model.ClassifyForDisplay(rec)
		if err != nil {
			continue
		}

		switch l := lec.(type) {
		case model.PostponedLecture:
			p := l.Postponement
			if IsBreakSlot(p.StartTime, p.EndTime) {
				continue
			}
			moved := l.Relocated()
			if moved.RoomName == "" && moved.RoomCode == "" && b.rooms != nil {
				if ref, ok := b.rooms(p.RoomID); ok {
					moved.RoomName, moved.RoomCode = ref.Name, ref.Code
				}
			}
			m.appendIfExists(p.Day, p.SlotKey(), moved)
		default:
			r := lec.Record()
			if IsBreakSlot(r.StartTime, r.EndTime) {
				continue
			}
			m.appendIfExists(r.DayOfWeek, r.SlotKey(), r)
		}
	}

	return m
}

func (m Matrix) appendIfExists(day model.DayToken, slotKey string, rec model.LectureRecord) {
	row, ok := m[day]
	if !ok {
		return
	}
	cell, ok := row[slotKey]
	if !ok {
		return
	}
	row[slotKey] = append(cell, rec)
}

// BuildAuto 按记录推导时间段与展示日后构建矩阵
func (b *MatrixBuilder) BuildAuto(records []model.LectureRecord) (Matrix, []TimeSlot, []model.DayToken) {
	slots := DeriveSlots(records)
	days := VisibleDays(records)
	return b.Build(records, slots, days), slots, days
}
