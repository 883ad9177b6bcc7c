package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// likeOperatorByDialect postgres 使用 ILIKE，sqlite/mysql 的 LIKE 默认大小写不敏感
func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// containsCondition 构建大小写不敏感的子串匹配条件
func containsCondition(db *gorm.DB, column string) string {
	dialect := dbDialectName(db)
	operator := likeOperatorByDialect(dialect)
	if operator == "ILIKE" {
		return fmt.Sprintf("%s ILIKE ? ESCAPE '!'", column)
	}
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(?) ESCAPE '!'", column)
}

// containsArg 转义通配符并包裹 %，转义符统一用 ! 以兼容 mysql 字符串字面量
func containsArg(term string) string {
	replacer := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return "%" + replacer.Replace(strings.TrimSpace(term)) + "%"
}
