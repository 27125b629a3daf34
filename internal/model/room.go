package model

// Room 教室（后端 JSON 结构）
type Room struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	DepartmentID   ID     `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	Description    string `json:"description,omitempty"`
	IsActive       bool   `json:"is_active"`
	QRCodePath     string `json:"qr_code_path,omitempty"` // 仅透传，网关不生成二维码
}

// Label 展示名：名称优先，其次编号
func (r *Room) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Code
}
