package model

// Doctor 授课教师（后端 JSON 结构）
type Doctor struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	DepartmentID   ID     `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	IsActive       bool   `json:"is_active"`
}

// DoctorsByDepartment /doctors/departments 的分组结构
type DoctorsByDepartment struct {
	DepartmentID   ID       `json:"department_id"`
	DepartmentName string   `json:"department_name"`
	Doctors        []Doctor `json:"doctors"`
}
