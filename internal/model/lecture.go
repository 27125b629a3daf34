package model

import (
	"errors"
	"fmt"
	"time"
)

// 课程记录校验错误
var (
	ErrPostponeAndMoveIn      = errors.New("课程不能同时处于延期与临时迁入状态")
	ErrInvalidTimeRange       = errors.New("开始时间必须早于结束时间")
	ErrSectionAndGroup        = errors.New("section 与 group 不能同时设置")
	ErrPrimaryDoctorCount     = errors.New("多教师课程必须且只能有一位主讲教师")
	ErrIncompletePostponement = errors.New("延期信息不完整")
)

// DateLayout 后端日期格式
const DateLayout = "2006-01-02"

// DoctorAssignment 多教师课程中的一位教师
type DoctorAssignment struct {
	DoctorID   ID     `json:"doctor_id"`
	DoctorName string `json:"doctor_name,omitempty"`
	IsPrimary  bool   `json:"is_primary"`
}

// LectureRecord 一次排定的授课（后端 JSON 原样结构）
//
// 延期字段与临时迁入字段互斥；section 仅用于理论课，group 仅用于实验课。
type LectureRecord struct {
	ID            ID          `json:"id"`
	DayOfWeek     DayToken    `json:"day_of_week"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	StudyType     StudyType   `json:"study_type"`
	AcademicStage Stage       `json:"academic_stage"`
	LectureType   LectureType `json:"lecture_type"`
	Section       *int        `json:"section,omitempty"`
	Group         *string     `json:"group,omitempty"`
	SubjectName   string      `json:"subject_name"`
	DepartmentID  ID          `json:"department_id,omitempty"`

	// 单教师
	DoctorID       ID     `json:"doctor_id,omitempty"`
	InstructorName string `json:"instructor_name,omitempty"`
	// 多教师
	HasMultipleDoctors bool               `json:"has_multiple_doctors,omitempty"`
	Doctors            []DoctorAssignment `json:"doctors,omitempty"`

	RoomID   ID     `json:"room_id,omitempty"`
	RoomName string `json:"room_name,omitempty"`
	RoomCode string `json:"room_code,omitempty"`

	// 延期（本条记录的原时段不再展示）
	IsPostponed        bool   `json:"is_postponed,omitempty"`
	PostponedDate      string `json:"postponed_date,omitempty"`
	PostponedStartTime string `json:"postponed_start_time,omitempty"`
	PostponedEndTime   string `json:"postponed_end_time,omitempty"`
	PostponedToRoomID  ID     `json:"postponed_to_room_id,omitempty"`
	PostponedRoomName  string `json:"postponed_room_name,omitempty"`
	PostponedRoomCode  string `json:"postponed_room_code,omitempty"`
	PostponedReason    string `json:"postponed_reason,omitempty"`

	// 临时迁入（仅用于展示来源，不影响位置）
	IsTemporaryMoveIn   bool   `json:"is_temporary_move_in,omitempty"`
	OriginalRoomID      ID     `json:"original_room_id,omitempty"`
	OriginalRoomName    string `json:"original_room_name,omitempty"`
	OriginalBookingDate string `json:"original_booking_date,omitempty"`
	OriginalStartTime   string `json:"original_start_time,omitempty"`
	OriginalEndTime     string `json:"original_end_time,omitempty"`
	MoveReason          string `json:"move_reason,omitempty"`
}

// SlotKey 时间段键 "start-end"
func (r *LectureRecord) SlotKey() string {
	return r.StartTime + "-" + r.EndTime
}

// PrimaryDoctor 返回主讲教师（单教师记录返回 doctor_id）
func (r *LectureRecord) PrimaryDoctor() (ID, string) {
	if r.HasMultipleDoctors {
		for _, d := range r.Doctors {
			if d.IsPrimary {
				return d.DoctorID, d.DoctorName
			}
		}
	}
	return r.DoctorID, r.InstructorName
}

// TaughtBy 是否由指定教师授课（含多教师中的非主讲教师）
func (r *LectureRecord) TaughtBy(doctorID ID) bool {
	if doctorID.Empty() {
		return false
	}
	if r.DoctorID == doctorID {
		return true
	}
	for _, d := range r.Doctors {
		if d.DoctorID == doctorID {
			return true
		}
	}
	return false
}

// HasCompletePostponement 延期四要素是否齐全：日期、起止时间、目标教室
func (r *LectureRecord) HasCompletePostponement() bool {
	return r.PostponedDate != "" &&
		r.PostponedStartTime != "" &&
		r.PostponedEndTime != "" &&
		!r.PostponedToRoomID.Empty()
}

// Validate 校验记录不变量
func (r *LectureRecord) Validate() error {
	if r.IsPostponed && r.IsTemporaryMoveIn {
		return ErrPostponeAndMoveIn
	}
	if err := ValidateTimeRange(r.StartTime, r.EndTime); err != nil {
		return err
	}
	if r.Section != nil && r.Group != nil {
		return ErrSectionAndGroup
	}
	if r.HasMultipleDoctors {
		primaries := 0
		for _, d := range r.Doctors {
			if d.IsPrimary {
				primaries++
			}
		}
		if len(r.Doctors) == 0 || primaries != 1 {
			return ErrPrimaryDoctorCount
		}
	}
	if r.IsPostponed {
		if !r.HasCompletePostponement() {
			return ErrIncompletePostponement
		}
		if _, err := ParseDate(r.PostponedDate); err != nil {
			return fmt.Errorf("%w: postponed_date %q", ErrIncompletePostponement, r.PostponedDate)
		}
		if err := ValidateTimeRange(r.PostponedStartTime, r.PostponedEndTime); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate 解析后端日期，兼容带时间部分的 ISO 字符串
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// ValidateTimeRange 校验 HH:MM 格式且 start < end（不支持跨午夜）
func ValidateTimeRange(start, end string) error {
	if !IsClockTime(start) || !IsClockTime(end) {
		return fmt.Errorf("%w: %q-%q", ErrInvalidTimeRange, start, end)
	}
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return nil
}

// IsClockTime 是否为 24 小时制 HH:MM
// 两位补零的 HH:MM 可直接按字符串比较先后
func IsClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
