package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

var (
	ErrUnavailable    = errors.New("authz service unavailable")
	ErrRoleRequired   = errors.New("role is required")
	ErrRoleReserved   = errors.New("reserved role is not allowed")
	ErrActionRequired = errors.New("action is required")
)

const (
	routePrefix   = "/api/v1"
	policyTable   = "casbin_rule"
	subjectPrefix = "role:"
	// registrySubject 角色登记用的虚拟父节点，使没有策略的角色也能被列出
	registrySubject = "role:__registry__"
)

// staffRBACModel 主体为 role:<员工角色>，资源为去掉 /api/v1 前缀的路由模板
const staffRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// Policy 角色策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 员工后台授权服务，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", policyTable)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(staffRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceRole 判断员工角色能否以 act 访问路由 obj
func (s *Service) EnforceRole(role, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(obj), NormalizeAction(act))
}

// EnsureRole 登记角色，已存在时直接返回规范化名称
func (s *Service) EnsureRole(role string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if subject == registrySubject {
		return "", ErrRoleReserved
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, registrySubject); err != nil {
		return "", fmt.Errorf("register role failed: %w", err)
	}
	return subject, nil
}

// InheritRole 使 child 继承 parent 的全部策略
func (s *Service) InheritRole(child, parent string) error {
	childSubject, err := s.EnsureRole(child)
	if err != nil {
		return err
	}
	parentSubject, err := s.EnsureRole(parent)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", childSubject, parentSubject); err != nil {
		return fmt.Errorf("link role inheritance failed: %w", err)
	}
	return nil
}

// GrantRolePolicy 为角色授予路由权限，重复授予无副作用
func (s *Service) GrantRolePolicy(role, object, action string) error {
	subject, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	act := NormalizeAction(action)
	if act == "" {
		return ErrActionRequired
	}
	if _, err := s.enforcer.AddPolicy(subject, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// ListRoles 已登记的角色，按名称排序
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	links, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, registrySubject)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(links))
	for _, link := range links {
		if len(link) > 0 && strings.HasPrefix(link[0], subjectPrefix) {
			roles = append(roles, link[0])
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// GetRolePolicies 角色直接持有的策略（不含继承）
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{Subject: rule[0], Object: rule[1], Action: rule[2]})
	}
	return policies, nil
}

// NormalizeRole 员工角色名转为授权主体，如 "front desk" -> "role:front_desk"
func NormalizeRole(role string) (string, error) {
	name := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	name = strings.TrimPrefix(name, subjectPrefix)
	if name == "" {
		return "", ErrRoleRequired
	}
	return subjectPrefix + name, nil
}

// NormalizeObject 路由统一为以 / 开头且不带 /api/v1 前缀
func NormalizeObject(object string) string {
	path := "/" + strings.TrimLeft(strings.TrimSpace(object), "/")
	if path == routePrefix {
		return "/"
	}
	return strings.TrimPrefix(path, routePrefix)
}

// NormalizeAction HTTP 方法统一大写
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
