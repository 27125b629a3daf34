package timetable

import (
	"sort"

	"college-schedule/backend/internal/model"
)

// TimeSlot 一个可渲染的时间段
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Key 时间段键 "start-end"
func (s TimeSlot) Key() string {
	return s.Start + "-" + s.End
}

// 休息时段，永不排课
var breakSlots = map[string]bool{
	"14:30-15:30": true,
	"15:00-16:30": true,
}

// IsBreakSlot 是否为被过滤的休息时段
func IsBreakSlot(start, end string) bool {
	return breakSlots[start+"-"+end]
}

// DefaultWeekDays 固定展示的工作日
var DefaultWeekDays = []model.DayToken{
	model.Sunday, model.Monday, model.Tuesday, model.Wednesday, model.Thursday,
}

// DeriveSlots 从记录中提取去重后的时间段，排除休息时段
// 延期记录贡献其延期后的时间段；结果按开始、结束时间排序（HH:MM 可按字符串比较）
func DeriveSlots(records []model.LectureRecord) []TimeSlot {
	seen := make(map[string]bool)
	var slots []TimeSlot

	add := func(start, end string) {
		if start == "" || end == "" || IsBreakSlot(start, end) {
			return
		}
		s := TimeSlot{Start: start, End: end}
		if seen[s.Key()] {
			return
		}
		seen[s.Key()] = true
		slots = append(slots, s)
	}

	for _, rec := range records {
		lec, err := model.ClassifyForDisplay(rec)
		if err != nil {
			continue
		}
		switch l := lec.(type) {
		case model.PostponedLecture:
			add(l.Postponement.StartTime, l.Postponement.EndTime)
		default:
			r := lec.Record()
			add(r.StartTime, r.EndTime)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].End < slots[j].End
	})
	return slots
}

// VisibleDays 周日至周四始终展示；周六仅在有课时展示，避免渲染空行
// 周六按本地教学周习惯排在周日之前
func VisibleDays(records []model.LectureRecord) []model.DayToken {
	days := append([]model.DayToken(nil), DefaultWeekDays...)
	for _, rec := range records {
		lec, err := model.ClassifyForDisplay(rec)
		if err != nil {
			continue
		}
		day := lec.Record().DayOfWeek
		if p, ok := lec.(model.PostponedLecture); ok {
			day = p.Postponement.Day
		}
		if day == model.Saturday {
			return append([]model.DayToken{model.Saturday}, days...)
		}
	}
	return days
}

// SortForDisplay 按阶段序号、再按开始时间稳定排序（返回新切片）
func SortForDisplay(records []model.LectureRecord) []model.LectureRecord {
	out := append([]model.LectureRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].AcademicStage.Rank(), out[j].AcademicStage.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
