package timetable

import (
	"fmt"

	"college-schedule/backend/internal/model"
)

// 界面展示使用阿拉伯语标签
var dayLabels = map[model.DayToken]string{
	model.Sunday:    "الأحد",
	model.Monday:    "الاثنين",
	model.Tuesday:   "الثلاثاء",
	model.Wednesday: "الأربعاء",
	model.Thursday:  "الخميس",
	model.Friday:    "الجمعة",
	model.Saturday:  "السبت",
}

var stageLabels = map[model.Stage]string{
	model.StageFirst:  "المرحلة الأولى",
	model.StageSecond: "المرحلة الثانية",
	model.StageThird:  "المرحلة الثالثة",
	model.StageFourth: "المرحلة الرابعة",
}

var studyTypeLabels = map[model.StudyType]string{
	model.StudyMorning: "صباحي",
	model.StudyEvening: "مسائي",
	model.StudyNight:   "ليلي",
}

// DayLabel 星期标签，未知值原样返回
func DayLabel(d model.DayToken) string {
	if l, ok := dayLabels[d]; ok {
		return l
	}
	return string(d)
}

// StageLabel 阶段标签，未知值原样返回
func StageLabel(s model.Stage) string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// StudyTypeLabel 学习类型标签，未知值原样返回
func StudyTypeLabel(s model.StudyType) string {
	if l, ok := studyTypeLabels[s]; ok {
		return l
	}
	return string(s)
}

// RoomLabel 教室标签：名称 > 编号 > "قاعة {id}"
func RoomLabel(rec *model.LectureRecord) string {
	switch {
	case rec.RoomName != "":
		return rec.RoomName
	case rec.RoomCode != "":
		return rec.RoomCode
	default:
		return fmt.Sprintf("قاعة %s", rec.RoomID)
	}
}
