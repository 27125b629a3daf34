package model

// DayToken 星期标识（后端使用英文小写）
type DayToken string

const (
	Sunday    DayToken = "sunday"
	Monday    DayToken = "monday"
	Tuesday   DayToken = "tuesday"
	Wednesday DayToken = "wednesday"
	Thursday  DayToken = "thursday"
	Friday    DayToken = "friday"
	Saturday  DayToken = "saturday"
)

// AllDays 以周日为 0 的星期顺序，与 time.Weekday 一致
var AllDays = []DayToken{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Valid 是否为合法星期
func (d DayToken) Valid() bool {
	for _, x := range AllDays {
		if x == d {
			return true
		}
	}
	return false
}

// StudyType 学习类型（早班/晚班/夜班，与年级无关）
type StudyType string

const (
	StudyMorning StudyType = "morning"
	StudyEvening StudyType = "evening"
	StudyNight   StudyType = "night"
)

// Valid 是否为合法学习类型
func (s StudyType) Valid() bool {
	return s == StudyMorning || s == StudyEvening || s == StudyNight
}

// Stage 学年阶段
type Stage string

const (
	StageFirst  Stage = "first"
	StageSecond Stage = "second"
	StageThird  Stage = "third"
	StageFourth Stage = "fourth"
)

// Rank 阶段序号（1-4），未知阶段排在最后
func (s Stage) Rank() int {
	switch s {
	case StageFirst:
		return 1
	case StageSecond:
		return 2
	case StageThird:
		return 3
	case StageFourth:
		return 4
	default:
		return 99
	}
}

// Valid 是否为合法阶段
func (s Stage) Valid() bool {
	return s.Rank() != 99
}

// LectureType 授课类型
type LectureType string

const (
	LectureTheoretical LectureType = "theoretical"
	LecturePractical   LectureType = "practical"
)

// Role 前端用户角色
type Role string

const (
	RoleDean           Role = "dean"
	RoleDepartmentHead Role = "department_head"
	RoleSupervisor     Role = "supervisor"
)
