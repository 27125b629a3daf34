package model

import (
	"errors"
	"time"
)

// LectureKind 课程记录的三种形态
type LectureKind int

const (
	KindRegular LectureKind = iota
	KindPostponed
	KindRelocatedIn
)

// String 实现 fmt.Stringer
func (k LectureKind) String() string {
	switch k {
	case KindPostponed:
		return "postponed"
	case KindRelocatedIn:
		return "relocated_in"
	default:
		return "regular"
	}
}

// Lecture 课程记录的判别联合：Regular / Postponed / RelocatedIn
// 每种形态只暴露与自身相关的字段，调用方按 Kind 分派，不再对可选字段做空值判断
type Lecture interface {
	Kind() LectureKind
	Record() LectureRecord
}

// Postponement 延期去向
type Postponement struct {
	Date      time.Time
	Day       DayToken
	StartTime string
	EndTime   string
	RoomID    ID
	RoomName  string
	RoomCode  string
	Reason    string
}

// SlotKey 延期后的时间段键
func (p Postponement) SlotKey() string {
	return p.StartTime + "-" + p.EndTime
}

// Relocation 临时迁入的来源信息（仅展示用）
type Relocation struct {
	OriginalRoomID      ID
	OriginalRoomName    string
	OriginalBookingDate string
	OriginalStartTime   string
	OriginalEndTime     string
	Reason              string
}

// RegularLecture 常规课程
type RegularLecture struct {
	rec LectureRecord
}

// Kind 实现 Lecture
func (l RegularLecture) Kind() LectureKind { return KindRegular }

// Record 实现 Lecture
func (l RegularLecture) Record() LectureRecord { return l.rec }

// PostponedLecture 已延期课程：原时段不展示，只出现在延期后的时段
type PostponedLecture struct {
	rec          LectureRecord
	Postponement Postponement
}

// Kind 实现 Lecture
func (l PostponedLecture) Kind() LectureKind { return KindPostponed }

// Record 实现 Lecture
func (l PostponedLecture) Record() LectureRecord { return l.rec }

// Relocated 返回展示用副本：时间、教室、星期替换为延期后的值
func (l PostponedLecture) Relocated() LectureRecord {
	moved := l.rec
	moved.StartTime = l.Postponement.StartTime
	moved.EndTime = l.Postponement.EndTime
	moved.RoomID = l.Postponement.RoomID
	moved.RoomName = l.Postponement.RoomName
	moved.RoomCode = l.Postponement.RoomCode
	moved.DayOfWeek = l.Postponement.Day
	return moved
}

// RelocatedInLecture 临时迁入课程：按当前（借用）位置展示，附带来源
type RelocatedInLecture struct {
	rec        LectureRecord
	Relocation Relocation
}

// Kind 实现 Lecture
func (l RelocatedInLecture) Kind() LectureKind { return KindRelocatedIn }

// Record 实现 Lecture
func (l RelocatedInLecture) Record() LectureRecord { return l.rec }

// ClassifyForDisplay 展示用归类：延期信息不完整的记录按常规课程留在原时段
func ClassifyForDisplay(rec LectureRecord) (Lecture, error) {
	lec, err := Classify(rec)
	if errors.Is(err, ErrIncompletePostponement) {
		return RegularLecture{rec: rec}, nil
	}
	return lec, err
}

// Classify 将后端记录归类为判别联合
// 延期与迁入同时为真、或延期信息不完整/日期无法解析时返回错误
func Classify(rec LectureRecord) (Lecture, error) {
	rec = NormalizeClockFields(rec)

	switch {
	case rec.IsPostponed && rec.IsTemporaryMoveIn:
		return nil, ErrPostponeAndMoveIn
	case rec.IsPostponed:
		if !rec.HasCompletePostponement() {
			return nil, ErrIncompletePostponement
		}
		date, err := ParseDate(rec.PostponedDate)
		if err != nil {
			return nil, ErrIncompletePostponement
		}
		return PostponedLecture{
			rec: rec,
			Postponement: Postponement{
				Date:      date,
				Day:       DayOfDate(date),
				StartTime: rec.PostponedStartTime,
				EndTime:   rec.PostponedEndTime,
				RoomID:    rec.PostponedToRoomID,
				RoomName:  rec.PostponedRoomName,
				RoomCode:  rec.PostponedRoomCode,
				Reason:    rec.PostponedReason,
			},
		}, nil
	case rec.IsTemporaryMoveIn:
		return RelocatedInLecture{
			rec: rec,
			Relocation: Relocation{
				OriginalRoomID:      rec.OriginalRoomID,
				OriginalRoomName:    rec.OriginalRoomName,
				OriginalBookingDate: rec.OriginalBookingDate,
				OriginalStartTime:   rec.OriginalStartTime,
				OriginalEndTime:     rec.OriginalEndTime,
				Reason:              rec.MoveReason,
			},
		}, nil
	default:
		return RegularLecture{rec: rec}, nil
	}
}

// DayOfDate 日期对应的星期（周日为 0）
func DayOfDate(t time.Time) DayToken {
	return AllDays[int(t.Weekday())]
}

// NormalizeClockFields 将 HH:MM:SS 统一截为 HH:MM
// 后端部分接口直接返回 PostgreSQL time 类型
func NormalizeClockFields(rec LectureRecord) LectureRecord {
	rec.StartTime = trimSeconds(rec.StartTime)
	rec.EndTime = trimSeconds(rec.EndTime)
	rec.PostponedStartTime = trimSeconds(rec.PostponedStartTime)
	rec.PostponedEndTime = trimSeconds(rec.PostponedEndTime)
	rec.OriginalStartTime = trimSeconds(rec.OriginalStartTime)
	rec.OriginalEndTime = trimSeconds(rec.OriginalEndTime)
	return rec
}

func trimSeconds(s string) string {
	if len(s) == 8 && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}
