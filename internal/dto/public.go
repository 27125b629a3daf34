package dto

// ── 公开查询 DTO ──

// StudentScheduleQuery 学生课表查询参数
type StudentScheduleQuery struct {
	DepartmentID string `form:"department_id" binding:"required,max=64"`
	Stage        string `form:"stage"         binding:"required,oneof=first second third fourth"`
	StudyType    string `form:"study_type"    binding:"required,oneof=morning evening night"`
	Section      string `form:"section"       binding:"omitempty,max=5"`
	Group        string `form:"group"         binding:"omitempty,max=5"`
}

// StudentLookupQuery 学号查询参数
type StudentLookupQuery struct {
	StudentID string `form:"student_id" binding:"required,max=50"`
}
