package authz

import (
	"github.com/dujiao-next/orderdesk/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 员工后台角色矩阵：staff 处理订单与在线状态，admin 拥有全部后台路由
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.StaffRoleStaff,
			Policies: []Policy{
				{Object: "/admin/orders", Action: "GET"},
				{Object: "/admin/orders", Action: "POST"},
				{Object: "/admin/orders/:id", Action: "GET"},
				{Object: "/admin/orders/:id", Action: "PUT"},
				{Object: "/admin/orders/:id/payments", Action: "POST"},
				{Object: "/admin/staff/presence", Action: "PUT"},
			},
		},
		{
			Role:     constants.StaffRoleAdmin,
			Inherits: []string{constants.StaffRoleStaff},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		if _, err := s.EnsureRole(seed.Role); err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			if err := s.InheritRole(seed.Role, parent); err != nil {
				return err
			}
		}
		for _, p := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, p.Object, p.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
