package timetable

import (
	"reflect"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"college-schedule/backend/internal/model"
)

func lecture(id string, day model.DayToken, start, end string) model.LectureRecord {
	return model.LectureRecord{
		ID:            model.ID(id),
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
		StudyType:     model.StudyMorning,
		AcademicStage: model.StageFirst,
		LectureType:   model.LectureTheoretical,
		SubjectName:   "subject-" + id,
		DoctorID:      "7",
		RoomID:        "1",
		RoomName:      "A101",
		RoomCode:      "A101",
	}
}

func ids(recs []model.LectureRecord) []model.ID {
	out := make([]model.ID, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

// ════════════════════════════════════════════════════════════
// 可用性检查
// ════════════════════════════════════════════════════════════

func TestCheck_BackToBackIsNotConflict(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "11:00", "12:00")}

	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning})
	if !res.Available || res.Conflict != nil {
		t.Errorf("首尾相接不应冲突，实际: %+v", res)
	}
}

func TestCheck_OverlapReturnsConflict(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "11:00", "12:00")}

	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "10:30", EndTime: "11:30", StudyType: model.StudyMorning})
	if res.Available {
		t.Fatal("期望冲突")
	}
	c := res.Conflict
	if c == nil || c.LectureID != "1" {
		t.Fatalf("期望冲突课程 1，实际: %+v", c)
	}
	if c.Time != "11:00 - 12:00" {
		t.Errorf("期望时间 11:00 - 12:00，实际: %s", c.Time)
	}
	if c.Day != "الأحد" || c.Stage != "المرحلة الأولى" || c.Room != "A101" {
		t.Errorf("冲突展示字段错误: %+v", c)
	}
}

func TestCheck_Containment(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "10:00", "10:30")}

	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "09:00", EndTime: "12:00", StudyType: model.StudyMorning})
	if res.Available {
		t.Error("候选时段完整包含已有课程，应冲突")
	}
}

func TestCheck_SelfExclusion(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "10:00", "11:00")}

	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning, ExcludeID: "1"})
	if !res.Available {
		t.Errorf("排除自身后应可用，实际: %+v", res.Conflict)
	}
}

func TestCheck_MultiDoctorNonPrimary(t *testing.T) {
	rec := lecture("1", model.Monday, "08:00", "10:00")
	rec.DoctorID = ""
	rec.HasMultipleDoctors = true
	rec.Doctors = []model.DoctorAssignment{
		{DoctorID: "3", IsPrimary: true},
		{DoctorID: "7", IsPrimary: false},
	}

	res := Check([]model.LectureRecord{rec}, "7", Candidate{Day: model.Monday, StartTime: "09:00", EndTime: "09:30", StudyType: model.StudyMorning})
	if res.Available {
		t.Error("非主讲教师也应匹配")
	}
}

func TestCheck_DifferentContext(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "10:00", "11:00")}

	cases := []struct {
		name string
		doc  model.ID
		c    Candidate
	}{
		{"其他教师", "8", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning}},
		{"其他星期", "7", Candidate{Day: model.Monday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning}},
		{"其他学习类型", "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyEvening}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if res := Check(all, tc.doc, tc.c); !res.Available {
				t.Errorf("期望可用，实际冲突: %+v", res.Conflict)
			}
		})
	}
}

func TestCheck_ShortCircuit(t *testing.T) {
	// 字段为空时不扫描记录：即使记录与任意时段冲突也返回可用
	all := []model.LectureRecord{lecture("1", model.Sunday, "00:00", "23:59")}
	full := Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning}

	if res := Check(all, "", full); !res.Available || res.Conflict != nil {
		t.Errorf("空教师应直接可用，实际: %+v", res)
	}
	noDay := full
	noDay.Day = ""
	if res := Check(all, "7", noDay); !res.Available || res.Conflict != nil {
		t.Errorf("空星期应直接可用，实际: %+v", res)
	}
	noEnd := full
	noEnd.EndTime = ""
	if res := Check(all, "7", noEnd); !res.Available {
		t.Error("空结束时间应直接可用")
	}
}

func TestCheck_FirstConflictInInputOrder(t *testing.T) {
	all := []model.LectureRecord{
		lecture("2", model.Sunday, "10:30", "11:30"),
		lecture("1", model.Sunday, "10:00", "11:00"),
	}
	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "12:00", StudyType: model.StudyMorning})
	if res.Conflict == nil || res.Conflict.LectureID != "2" {
		t.Errorf("期望返回输入顺序中的第一条冲突 2，实际: %+v", res.Conflict)
	}
}

func TestCheck_SecondsFormat(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "11:00:00", "12:00:00")}

	res := Check(all, "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning})
	if !res.Available {
		t.Error("HH:MM:SS 应按 HH:MM 比较")
	}
}

func TestCheck_RoomFallbackLabel(t *testing.T) {
	rec := lecture("1", model.Sunday, "10:00", "11:00")
	rec.RoomName, rec.RoomCode, rec.RoomID = "", "", "42"

	res := Check([]model.LectureRecord{rec}, "7", Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning})
	if res.Conflict == nil || res.Conflict.Room != "قاعة 42" {
		t.Errorf("期望教室占位标签，实际: %+v", res.Conflict)
	}
}

func TestCheckMany(t *testing.T) {
	all := []model.LectureRecord{lecture("1", model.Sunday, "10:00", "11:00")}

	got := CheckMany(all, []model.ID{"7", "8"}, Candidate{Day: model.Sunday, StartTime: "10:00", EndTime: "11:00", StudyType: model.StudyMorning})
	if len(got) != 2 {
		t.Fatalf("期望 2 个结果，实际 %d", len(got))
	}
	if got["7"].Available {
		t.Error("教师 7 应冲突")
	}
	if !got["8"].Available {
		t.Error("教师 8 应可用")
	}
}

// ════════════════════════════════════════════════════════════
// 课表矩阵
// ════════════════════════════════════════════════════════════

var testSlots = []TimeSlot{{"08:00", "09:00"}, {"09:00", "10:00"}, {"10:00", "11:00"}, {"14:30", "15:30"}, {"15:00", "16:30"}}

func TestBuild_BreakSlotsNeverPlaced(t *testing.T) {
	records := []model.LectureRecord{
		lecture("1", model.Sunday, "14:30", "15:30"),
		lecture("2", model.Monday, "15:00", "16:30"),
	}
	m := NewMatrixBuilder(nil).Build(records, testSlots, DefaultWeekDays)
	if n := m.Count(); n != 0 {
		t.Errorf("休息时段不应放置任何课程，实际 %d 条", n)
	}
}

func TestBuild_PostponedLandsOnTargetDay(t *testing.T) {
	rec := lecture("1", model.Sunday, "08:00", "09:00")
	rec.IsPostponed = true
	rec.PostponedDate = "2025-03-04" // 周二
	rec.PostponedStartTime = "09:00"
	rec.PostponedEndTime = "10:00"
	rec.PostponedToRoomID = "5"
	rec.PostponedRoomName = "B202"

	m := NewMatrixBuilder(nil).Build([]model.LectureRecord{rec}, testSlots, DefaultWeekDays)

	if got := m.Cell(model.Sunday, "08:00-09:00"); len(got) != 0 {
		t.Errorf("原时段不应出现延期课程，实际 %v", ids(got))
	}
	cell := m.Cell(model.Tuesday, "09:00-10:00")
	if len(cell) != 1 {
		t.Fatalf("期望延期课程出现在周二 09:00-10:00，实际 %d 条", len(cell))
	}
	moved := cell[0]
	if moved.StartTime != "09:00" || moved.EndTime != "10:00" || moved.DayOfWeek != model.Tuesday {
		t.Errorf("展示字段未覆盖: %+v", moved)
	}
	if moved.RoomID != "5" || moved.RoomName != "B202" {
		t.Errorf("教室未覆盖: %s %s", moved.RoomID, moved.RoomName)
	}
	if m.Count() != 1 {
		t.Errorf("矩阵中应只有 1 条记录，实际 %d", m.Count())
	}
	// 输入不被修改
	if rec.DayOfWeek != model.Sunday || rec.StartTime != "08:00" {
		t.Error("Build 不应修改输入记录")
	}
}

func TestBuild_PostponedRoomLookup(t *testing.T) {
	rec := lecture("1", model.Sunday, "08:00", "09:00")
	rec.IsPostponed = true
	rec.PostponedDate = "2025-03-04T00:00:00Z"
	rec.PostponedStartTime = "09:00:00"
	rec.PostponedEndTime = "10:00:00"
	rec.PostponedToRoomID = "5"

	rooms := RoomsLookup([]model.Room{{ID: "5", Name: "مختبر", Code: "L5"}})
	m := NewMatrixBuilder(rooms).Build([]model.LectureRecord{rec}, testSlots, DefaultWeekDays)

	cell := m.Cell(model.Tuesday, "09:00-10:00")
	if len(cell) != 1 || cell[0].RoomName != "مختبر" || cell[0].RoomCode != "L5" {
		t.Errorf("期望通过教室查询补全名称，实际 %+v", cell)
	}
}

func TestBuild_IncompletePostponementStaysInPlace(t *testing.T) {
	rec := lecture("1", model.Sunday, "08:00", "09:00")
	rec.IsPostponed = true
	rec.PostponedDate = "2025-03-04"

	m := NewMatrixBuilder(nil).Build([]model.LectureRecord{rec}, testSlots, DefaultWeekDays)
	if m.Count() != 1 {
		t.Fatalf("期望 1 条，实际 %d 条", m.Count())
	}
	if cell := m.Cell(model.Sunday, "08:00-09:00"); len(cell) != 1 || cell[0].ID != "1" {
		t.Errorf("延期信息不完整的记录应留在原时段，实际 %v", cell)
	}
	if cell := m.Cell(model.Tuesday, "08:00-09:00"); len(cell) != 0 {
		t.Errorf("不应出现在延期日期，实际 %v", cell)
	}
}

func TestBuild_PostponedToBreakSlotDropped(t *testing.T) {
	rec := lecture("1", model.Sunday, "08:00", "09:00")
	rec.IsPostponed = true
	rec.PostponedDate = "2025-03-04"
	rec.PostponedStartTime = "14:30"
	rec.PostponedEndTime = "15:30"
	rec.PostponedToRoomID = "5"

	m := NewMatrixBuilder(nil).Build([]model.LectureRecord{rec}, testSlots, DefaultWeekDays)
	if m.Count() != 0 {
		t.Errorf("延期到休息时段应丢弃，实际 %d 条", m.Count())
	}
}

func TestBuild_RelocatedInPlacedAsIs(t *testing.T) {
	rec := lecture("1", model.Wednesday, "10:00", "11:00")
	rec.IsTemporaryMoveIn = true
	rec.OriginalRoomID = "9"
	rec.OriginalRoomName = "C3"
	rec.MoveReason = "صيانة"

	m := NewMatrixBuilder(nil).Build([]model.LectureRecord{rec}, testSlots, DefaultWeekDays)
	cell := m.Cell(model.Wednesday, "10:00-11:00")
	if len(cell) != 1 {
		t.Fatalf("临时迁入课程应放在当前位置，实际 %d 条", len(cell))
	}
	if cell[0].OriginalRoomName != "C3" || cell[0].MoveReason != "صيانة" {
		t.Error("来源信息应随记录保留")
	}
}

func TestBuild_UnknownSlotOrDayDropped(t *testing.T) {
	records := []model.LectureRecord{
		lecture("1", model.Sunday, "12:00", "13:00"),
		lecture("2", model.Friday, "08:00", "09:00"),
		lecture("3", model.Sunday, "08:00", "09:00"),
	}
	m := NewMatrixBuilder(nil).Build(records, testSlots, DefaultWeekDays)
	if m.Count() != 1 {
		t.Errorf("期望仅放置 1 条，实际 %d", m.Count())
	}
	if m.Cell(model.Friday, "08:00-09:00") != nil {
		t.Error("不展示的星期不应有单元格")
	}
}

func TestBuild_CellsInitialized(t *testing.T) {
	m := NewMatrixBuilder(nil).Build(nil, testSlots, DefaultWeekDays)
	for _, d := range DefaultWeekDays {
		for _, s := range testSlots {
			cell, ok := m[d][s.Key()]
			if !ok || cell == nil {
				t.Fatalf("单元格 %s %s 未初始化", d, s.Key())
			}
		}
	}
}

func TestBuild_StableOrder(t *testing.T) {
	records := []model.LectureRecord{
		lecture("c", model.Sunday, "08:00", "09:00"),
		lecture("a", model.Sunday, "08:00", "09:00"),
		lecture("b", model.Sunday, "08:00", "09:00"),
	}
	b := NewMatrixBuilder(nil)
	m1 := b.Build(records, testSlots, DefaultWeekDays)
	m2 := b.Build(records, testSlots, DefaultWeekDays)

	want := []model.ID{"c", "a", "b"}
	if got := ids(m1.Cell(model.Sunday, "08:00-09:00")); !reflect.DeepEqual(got, want) {
		t.Errorf("期望保持输入顺序 %v，实际 %v", want, got)
	}
	if !reflect.DeepEqual(m1, m2) {
		t.Error("相同输入两次构建结果应一致")
	}
}

// ════════════════════════════════════════════════════════════
// 时间段与展示日
// ════════════════════════════════════════════════════════════

func TestDeriveSlots(t *testing.T) {
	post := lecture("4", model.Sunday, "08:00", "09:00")
	post.IsPostponed = true
	post.PostponedDate = "2025-03-04"
	post.PostponedStartTime = "12:00"
	post.PostponedEndTime = "13:00"
	post.PostponedToRoomID = "5"

	records := []model.LectureRecord{
		lecture("1", model.Sunday, "10:00", "11:00"),
		lecture("2", model.Monday, "08:00", "10:00"),
		lecture("3", model.Monday, "08:00", "09:00"),
		lecture("5", model.Monday, "14:30", "15:30"),
		lecture("6", model.Monday, "10:00", "11:00"),
		post,
	}
	got := DeriveSlots(records)
	want := []TimeSlot{{"08:00", "09:00"}, {"08:00", "10:00"}, {"10:00", "11:00"}, {"12:00", "13:00"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestVisibleDays(t *testing.T) {
	if got := VisibleDays(nil); !reflect.DeepEqual(got, DefaultWeekDays) {
		t.Errorf("无周六课程时期望 %v，实际 %v", DefaultWeekDays, got)
	}

	records := []model.LectureRecord{lecture("1", model.Saturday, "08:00", "09:00")}
	got := VisibleDays(records)
	if len(got) != 6 || got[0] != model.Saturday {
		t.Errorf("有周六课程时应展示周六，实际 %v", got)
	}

	// 延期到周六（2025-03-08）同样展示
	post := lecture("2", model.Sunday, "08:00", "09:00")
	post.IsPostponed = true
	post.PostponedDate = "2025-03-08"
	post.PostponedStartTime = "08:00"
	post.PostponedEndTime = "09:00"
	post.PostponedToRoomID = "1"
	if got := VisibleDays([]model.LectureRecord{post}); len(got) != 6 {
		t.Errorf("延期到周六时应展示周六，实际 %v", got)
	}
}

func TestSortForDisplay(t *testing.T) {
	a := lecture("a", model.Sunday, "10:00", "11:00")
	a.AcademicStage = model.StageSecond
	b := lecture("b", model.Sunday, "08:00", "09:00")
	b.AcademicStage = model.StageSecond
	c := lecture("c", model.Sunday, "12:00", "13:00")
	c.AcademicStage = model.StageFirst

	in := []model.LectureRecord{a, b, c}
	got := ids(SortForDisplay(in))
	want := []model.ID{"c", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
	if in[0].ID != "a" {
		t.Error("SortForDisplay 不应修改输入")
	}
}

func TestBuildAuto(t *testing.T) {
	records := []model.LectureRecord{
		lecture("1", model.Sunday, "08:00", "09:00"),
		lecture("2", model.Saturday, "10:00", "11:00"),
	}
	m, slots, days := NewMatrixBuilder(nil).BuildAuto(records)
	if len(slots) != 2 || len(days) != 6 {
		t.Fatalf("slots=%v days=%v", slots, days)
	}
	if m.Count() != 2 {
		t.Errorf("期望 2 条，实际 %d", m.Count())
	}
}

// ════════════════════════════════════════════════════════════
// 日历导出
// ════════════════════════════════════════════════════════════

func TestDoctorCalendar(t *testing.T) {
	regular := lecture("1", model.Tuesday, "08:00", "09:30")
	regular.SubjectName = "تشريح"

	post := lecture("2", model.Sunday, "10:00", "11:00")
	post.IsPostponed = true
	post.PostponedDate = "2025-03-06"
	post.PostponedStartTime = "12:00"
	post.PostponedEndTime = "13:00"
	post.PostponedToRoomID = "5"
	post.PostponedReason = "عطلة"

	broken := lecture("3", model.Sunday, "11:00", "10:00")

	from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC) // 周日
	cal := DoctorCalendar([]model.LectureRecord{regular, post, broken}, CalendarOptions{
		Name:  "د. أحمد",
		From:  from,
		Weeks: 15,
		Now:   from,
	})

	out := cal.Serialize()
	parsed, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("导出内容应可解析: %v", err)
	}
	events := parsed.Events()
	if len(events) != 3 {
		t.Fatalf("期望 3 个事件（常规、延期课程的每周事件与单次事件），实际 %d", len(events))
	}

	if n := strings.Count(out, "RRULE:FREQ=WEEKLY;COUNT=15"); n != 2 {
		t.Errorf("常规与延期课程都应保留每周重复事件，实际 %d 个", n)
	}
	if !strings.Contains(out, "DTSTART:20250302T100000Z") {
		t.Errorf("延期课程的每周事件应从第一个周日开始:\n%s", out)
	}
	if !strings.Contains(out, "EXDATE:20250302T100000Z") {
		t.Errorf("应排除被延期的那一次:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART:20250304T080000Z") {
		t.Errorf("常规课程应从第一个周二开始:\n%s", out)
	}
	if !strings.Contains(out, "DTSTART:20250306T120000Z") {
		t.Errorf("延期课程应在延期日期:\n%s", out)
	}
}

func TestDoctorCalendar_IncompletePostponementExportedWeekly(t *testing.T) {
	rec := lecture("1", model.Sunday, "09:00", "10:00")
	rec.IsPostponed = true
	rec.PostponedDate = "2026-10-20"

	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	out := DoctorCalendar([]model.LectureRecord{rec}, CalendarOptions{From: from, Weeks: 16, Now: from}).Serialize()

	if !strings.Contains(out, "RRULE:FREQ=WEEKLY;COUNT=16") {
		t.Errorf("应导出每周事件:\n%s", out)
	}
	if strings.Contains(out, "EXDATE") {
		t.Errorf("延期信息不完整时不应排除任何一次:\n%s", out)
	}
}

func TestOriginalOccurrence(t *testing.T) {
	cases := []struct {
		name      string
		postponed time.Time
		day       model.DayToken
		want      string
	}{
		{"同周稍后", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), model.Sunday, "2026-10-18"},
		{"延期到周六", time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC), model.Thursday, "2026-10-29"},
		{"同一天", time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), model.Thursday, "2026-10-22"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := originalOccurrence(tc.postponed, tc.day).Format("2006-01-02"); got != tc.want {
				t.Errorf("期望 %s，实际 %s", tc.want, got)
			}
		})
	}
}

func TestNextWeekday(t *testing.T) {
	sun := time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)
	if got := nextWeekday(sun, model.Sunday); got.Day() != 2 || got.Hour() != 0 {
		t.Errorf("当天即为目标星期，实际 %v", got)
	}
	if got := nextWeekday(sun, model.Saturday); got.Day() != 8 {
		t.Errorf("期望 3 月 8 日，实际 %v", got)
	}
}
