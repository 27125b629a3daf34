package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
// 后端列表接口不分页，由网关在内存中切片
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// Paginate 对已加载的列表切片，返回当前页与总数
func Paginate[T any](items []T, p *PaginationRequest) ([]T, int64) {
	total := int64(len(items))
	start := p.GetOffset()
	if start >= len(items) {
		return []T{}, total
	}
	end := start + p.GetPageSize()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}
