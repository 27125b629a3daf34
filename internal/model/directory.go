package model

// User 后端用户（院长/系主任/督导）
type User struct {
	ID           ID     `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	Email        string `json:"email,omitempty"`
	Role         Role   `json:"role"`
	DepartmentID ID     `json:"department_id,omitempty"`
	IsActive     bool   `json:"is_active"`
}

// Department 院系
type Department struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	HeadID ID     `json:"head_id,omitempty"`
}

// Student 学生查询结果
type Student struct {
	ID             ID        `json:"id"`
	StudentID      string    `json:"student_id"`
	FullName       string    `json:"full_name"`
	DepartmentID   ID        `json:"department_id"`
	DepartmentName string    `json:"department_name,omitempty"`
	AcademicStage  Stage     `json:"academic_stage"`
	StudyType      StudyType `json:"study_type"`
	Section        *int      `json:"section,omitempty"`
	Group          *string   `json:"group,omitempty"`
}
