package models

// PaginationQuery 分页查询参数
type PaginationQuery struct {
	PageNum  int  `form:"pageNum" json:"pageNum"`
	PageSize int  `form:"pageSize" json:"pageSize"`
	Desc     bool `form:"desc" json:"desc"`
}

// PaginationResult 分页结果
type PaginationResult struct {
	Total    int64 `form:"total" json:"total"`
	PageNum  int   `form:"pageNum" json:"pageNum"`
	PageSize int   `form:"pageSize" json:"pageSize"`
}

// NewPaginationResult 创建一个新的分页结果对象
func NewPaginationResult(total int64, pageNum, pageSize int) PaginationResult {
	return PaginationResult{
		Total:    total,
		PageNum:  pageNum,
		PageSize: pageSize,
	}
}

// Normalize 规范化分页参数并返回偏移量和每页数量
func (q *PaginationQuery) Normalize() (offset, limit int) {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 20
	}
	return (q.PageNum - 1) * q.PageSize, q.PageSize
}
