package timetable

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"college-schedule/backend/internal/model"
)

// ── 教师日历导出 ────────────────────────────────────────────
//
// 将教师的课程记录导出为 iCalendar (RFC 5545)：
//   - 常规/临时迁入课程 → 每周重复事件，从 from 之后的第一个对应星期开始
//   - 延期课程 → 原每周事件照常生成，但排除被延期的那一次（EXDATE），
//     另在延期日期生成单次事件
//   - 延期信息不完整的课程按常规课程导出
//   - 无法归类或时间非法的记录跳过
// ─────────────────────────────────────────────────────────────

const (
	icsProductID = "-//college-schedule//gateway//AR"
	icsUTCLayout = "20060102T150405Z"
)

// CalendarOptions 导出参数
type CalendarOptions struct {
	Name     string         // 日历名称（教师姓名）
	From     time.Time      // 重复事件的起点
	Weeks    int            // 重复周数，<=0 时不限
	Location *time.Location // 课程所在时区
	Now      time.Time      // DTSTAMP
}

// DoctorCalendar 生成教师课表日历
func DoctorCalendar(records []model.LectureRecord, opts CalendarOptions) *ics.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(loc.String())

	from := opts.From.In(loc)
	for _, rec := range records {
		lec, err := model.ClassifyForDisplay(rec)
		if err != nil {
			continue
		}
		switch l := lec.(type) {
		case model.PostponedLecture:
			rec := l.Record()
			if evt := addWeeklyEvent(cal, rec, from, opts.Weeks, loc, now); evt != nil {
				skipped := originalOccurrence(l.Postponement.Date, rec.DayOfWeek)
				evt.AddExdate(at(skipped, rec.StartTime, loc).UTC().Format(icsUTCLayout))
			}
			addPostponedEvent(cal, l, loc, now)
		default:
			addWeeklyEvent(cal, lec.Record(), from, opts.Weeks, loc, now)
		}
	}
	return cal
}

func addWeeklyEvent(cal *ics.Calendar, rec model.LectureRecord, from time.Time, weeks int, loc *time.Location, now time.Time) *ics.VEvent {
	if model.ValidateTimeRange(rec.StartTime, rec.EndTime) != nil || !rec.DayOfWeek.Valid() {
		return nil
	}
	day := nextWeekday(from, rec.DayOfWeek)
	start, end := at(day, rec.StartTime, loc), at(day, rec.EndTime, loc)

	evt := cal.AddEvent(fmt.Sprintf("lecture-%s@college-schedule", rec.ID))
	evt.SetDtStampTime(now)
	evt.SetStartAt(start)
	evt.SetEndAt(end)
	evt.SetSummary(rec.SubjectName)
	evt.SetLocation(RoomLabel(&rec))
	evt.SetDescription(describe(&rec))

	rule := "FREQ=WEEKLY"
	if weeks > 0 {
		rule += fmt.Sprintf(";COUNT=%d", weeks)
	}
	evt.AddRrule(rule)
	return evt
}

// originalOccurrence 延期日期所在教学周（周六起）中原星期对应的日期
func originalOccurrence(postponed time.Time, day model.DayToken) time.Time {
	base := time.Date(postponed.Year(), postponed.Month(), postponed.Day(), 0, 0, 0, 0, postponed.Location())
	weekStart := base.AddDate(0, 0, -((int(base.Weekday()) + 1) % 7))
	return nextWeekday(weekStart, day)
}

func addPostponedEvent(cal *ics.Calendar, l model.PostponedLecture, loc *time.Location, now time.Time) {
	p := l.Postponement
	if model.ValidateTimeRange(p.StartTime, p.EndTime) != nil {
		return
	}
	moved := l.Relocated()
	date := time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, loc)

	evt := cal.AddEvent(fmt.Sprintf("lecture-%s-%s@college-schedule", moved.ID, p.Date.Format("20060102")))
	evt.SetDtStampTime(now)
	evt.SetStartAt(at(date, p.StartTime, loc))
	evt.SetEndAt(at(date, p.EndTime, loc))
	evt.SetSummary(moved.SubjectName)
	evt.SetLocation(RoomLabel(&moved))

	desc := describe(&moved)
	if p.Reason != "" {
		desc += "\n" + p.Reason
	}
	evt.SetDescription(desc)
}

func describe(rec *model.LectureRecord) string {
	parts := []string{StageLabel(rec.AcademicStage), StudyTypeLabel(rec.StudyType)}
	if _, name := rec.PrimaryDoctor(); name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, " / ")
}

// nextWeekday from 当天或之后第一个指定星期（零点）
func nextWeekday(from time.Time, day model.DayToken) time.Time {
	base := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for i := 0; i < 7; i++ {
		d := base.AddDate(0, 0, i)
		if model.DayOfDate(d) == day {
			return d
		}
	}
	return base
}

// at 将 HH:MM 应用到日期上，调用方已校验格式
func at(date time.Time, clock string, loc *time.Location) time.Time {
	t, _ := time.Parse("15:04", clock)
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
