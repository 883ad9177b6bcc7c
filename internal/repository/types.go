package repository

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page       int
	PageSize   int
	Statuses   []string // 为空表示不限制状态
	StaffID    *uint    // 非空时只返回该员工负责的订单
	CustomerID uint
	SearchBy   string
	Search     string
	SortBy     string
	SortOrder  string
}

// orderSortColumns 允许排序的字段
var orderSortColumns = map[string]string{
	"created_at":        "created_at",
	"updated_at":        "updated_at",
	"delivery_date":     "delivery_date",
	"order_total_price": "order_total_price",
	"id":                "id",
}
