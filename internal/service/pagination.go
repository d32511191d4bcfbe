package service

import "github.com/noah-isme/school-portal-api/internal/models"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
