package timetable

import (
	"college-schedule/backend/internal/model"
)

// ConflictSummary 冲突课程的展示信息
type ConflictSummary struct {
	LectureID model.ID `json:"lecture_id"`
	Subject   string   `json:"subject"`
	Stage     string   `json:"stage"`
	Time      string   `json:"time"`
	Room      string   `json:"room"`
	Day       string   `json:"day"`
}

// AvailabilityResult 教师可用性结果
type AvailabilityResult struct {
	Available bool             `json:"available"`
	Conflict  *ConflictSummary `json:"conflict"`
}

// Candidate 待检查的排课时段
type Candidate struct {
	Day       model.DayToken
	StartTime string
	EndTime   string
	StudyType model.StudyType
	ExcludeID model.ID // 正在编辑的课程，避免与自身冲突
}

func available() AvailabilityResult {
	return AvailabilityResult{Available: true}
}

// Check 检查教师在候选时段是否已有课
//
// 教师、星期、起止时间任一为空时直接返回可用，不扫描记录。
// 区间比较使用严格不等：10:00-11:00 与 11:00-12:00 首尾相接不算冲突。
// 只返回输入顺序中的第一条冲突。
func Check(all []model.LectureRecord, doctorID model.ID, c Candidate) AvailabilityResult {
	if doctorID.Empty() || c.Day == "" || c.StartTime == "" || c.EndTime == "" {
		return available()
	}

	for i := range all {
		rec := model.NormalizeClockFields(all[i])
		if !c.ExcludeID.Empty() && rec.ID == c.ExcludeID {
			continue
		}
		if !rec.TaughtBy(doctorID) {
			continue
		}
		if rec.DayOfWeek != c.Day || rec.StudyType != c.StudyType {
			continue
		}
		if c.StartTime < rec.EndTime && c.EndTime > rec.StartTime {
			return AvailabilityResult{Available: false, Conflict: Summarize(&rec)}
		}
	}
	return available()
}

// CheckMany 为一组教师分别计算可用性，用于选择列表中的逐项提示
func CheckMany(all []model.LectureRecord, doctorIDs []model.ID, c Candidate) map[model.ID]AvailabilityResult {
	out := make(map[model.ID]AvailabilityResult, len(doctorIDs))
	for _, id := range doctorIDs {
		out[id] = Check(all, id, c)
	}
	return out
}

// Summarize 冲突课程的展示摘要
func Summarize(rec *model.LectureRecord) *ConflictSummary {
	return &ConflictSummary{
		LectureID: rec.ID,
		Subject:   rec.SubjectName,
		Stage:     StageLabel(rec.AcademicStage),
		Time:      rec.StartTime + " - " + rec.EndTime,
		Room:      RoomLabel(rec),
		Day:       DayLabel(rec.DayOfWeek),
	}
}
