package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	return query.Limit(pageSize).Offset(PageOffset(page, pageSize))
}

// PageOffset 计算 1 起始页码对应的偏移量
func PageOffset(page, pageSize int) int {
	if page < 1 || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}

// applySort 按白名单字段排序，未命中时按创建时间倒序
func applySort(query *gorm.DB, allowed map[string]string, sortBy, sortOrder string) *gorm.DB {
	column, ok := allowed[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return query.Order("created_at DESC").Order("id DESC")
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "asc") {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction)).Order("id DESC")
}
