package permission

import "strings"

// Risk 菜单风险级别
type Risk string

const (
	RiskSafe    Risk = "safe"
	RiskWarning Risk = "warning"
	RiskDanger  Risk = "danger"
)

// MenuNode 静态菜单权限节点
// 启动时构建一次，只读，不可变；仅用于路由路径 → 权限 key 的翻译与页面标题
type MenuNode struct {
	Key      string
	Title    string
	Path     string
	Level    Level
	Risk     Risk
	Children []MenuNode
}

// DefaultMenuTree 系统默认菜单权限树
// 后台 API 未返回完整权限树时，以此作为静态配置
var DefaultMenuTree = []MenuNode{
	{Key: "dashboard", Title: "工作台", Path: "/dashboard", Level: LevelLow, Risk: RiskSafe},
	{
		Key: "customer", Title: "客户管理", Path: "/customer", Level: LevelMedium, Risk: RiskSafe,
		Children: []MenuNode{
			{Key: "customer-list", Title: "客户列表", Path: "/customer/list", Level: LevelLow, Risk: RiskSafe},
			{Key: "customer-follow", Title: "跟进管理", Path: "/customer/follow", Level: LevelMedium, Risk: RiskSafe},
			{Key: "customer-reminders", Title: "跟进提醒", Path: "/customer/reminders", Level: LevelLow, Risk: RiskSafe},
			{Key: "customer-analytics", Title: "跟进分析", Path: "/customer/analytics", Level: LevelLow, Risk: RiskSafe},
		},
	},
	{
		Key: "sales", Title: "销售管理", Path: "/sales", Level: LevelMedium, Risk: RiskSafe,
		Children: []MenuNode{
			{Key: "sales-record", Title: "销售记录", Path: "/sales/record", Level: LevelMedium, Risk: RiskSafe},
			{Key: "sales-stats", Title: "销售统计", Path: "/sales/stats", Level: LevelLow, Risk: RiskSafe},
		},
	},
	{Key: "script", Title: "话术库", Path: "/script", Level: LevelLow, Risk: RiskSafe},
	{Key: "knowledge", Title: "知识库", Path: "/knowledge", Level: LevelLow, Risk: RiskSafe},
	{Key: "data-query", Title: "数查一点通", Path: "/data-query", Level: LevelMedium, Risk: RiskSafe},
	{
		Key: "user-center", Title: "用户中心", Path: "/user-center", Level: LevelLow, Risk: RiskSafe,
		Children: []MenuNode{
			{Key: "user-profile", Title: "个人信息", Path: "/user-center/profile", Level: LevelLow, Risk: RiskSafe},
			{Key: "user-preferences", Title: "偏好设置", Path: "/user-center/preferences", Level: LevelLow, Risk: RiskSafe},
			{Key: "user-notifications", Title: "消息通知", Path: "/user-center/notifications", Level: LevelLow, Risk: RiskSafe},
			{Key: "user-security", Title: "安全设置", Path: "/user-center/security", Level: LevelMedium, Risk: RiskWarning},
			{Key: "user-login-logs", Title: "登录日志", Path: "/user-center/login-logs", Level: LevelLow, Risk: RiskSafe},
			{Key: "user-devices", Title: "设备管理", Path: "/user-center/devices", Level: LevelMedium, Risk: RiskWarning},
		},
	},
	{
		Key: "system", Title: "系统设置", Path: "/system", Level: LevelHigh, Risk: RiskDanger,
		Children: []MenuNode{
			{Key: "system-user", Title: "用户管理", Path: "/system/user", Level: LevelHigh, Risk: RiskDanger},
			{Key: "system-department", Title: "部门管理", Path: "/system/department", Level: LevelHigh, Risk: RiskWarning},
			{Key: "system-role", Title: "角色权限", Path: "/system/role", Level: LevelHigh, Risk: RiskDanger},
			{Key: "system-log", Title: "操作日志", Path: "/system/log", Level: LevelMedium, Risk: RiskSafe},
		},
	},
}

// DefaultRolePermissions 各角色的默认菜单权限
// 仅在权限快照为空（登录后用户信息尚未拉取）时生效
var DefaultRolePermissions = map[Role][]string{
	RoleSuperAdmin: {
		"dashboard", "customer", "customer-list", "customer-follow", "customer-reminders", "customer-analytics",
		"sales", "sales-record", "sales-stats", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences", "user-notifications", "user-security", "user-login-logs", "user-devices",
		"system", "system-user", "system-department", "system-role", "system-log",
	},
	RoleAdmin: {
		"dashboard", "customer", "customer-list", "customer-follow", "customer-reminders", "customer-analytics",
		"sales", "sales-record", "sales-stats", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences", "user-notifications", "user-security", "user-login-logs", "user-devices",
		"system", "system-user", "system-department", "system-role", "system-log",
	},
	RoleManager: {
		"dashboard", "customer", "customer-list", "customer-follow", "customer-reminders", "customer-analytics",
		"sales", "sales-record", "sales-stats", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences", "user-notifications", "user-security", "user-login-logs",
	},
	RoleSales: {
		"dashboard", "customer", "customer-list", "customer-follow", "customer-reminders",
		"sales", "sales-record", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences", "user-notifications",
	},
	RoleTeacher: {
		"dashboard", "customer", "customer-list", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences", "user-notifications",
	},
	RoleViewer: {
		"dashboard", "script", "knowledge", "data-query",
		"user-center", "user-profile", "user-preferences",
	},
}

// MenuIndex 菜单树的查询索引
// 树在启动时展平为 path/key 两个方向的映射，路径查找支持最长前缀匹配
type MenuIndex struct {
	byPath   map[string]*MenuNode
	byKey    map[string]*MenuNode
	children map[string][]string // key → 直接子节点 key
	keys     []string            // 先序遍历顺序
}

// NewMenuIndex 从菜单树构建索引
func NewMenuIndex(tree []MenuNode) *MenuIndex {
	idx := &MenuIndex{
		byPath:   make(map[string]*MenuNode),
		byKey:    make(map[string]*MenuNode),
		children: make(map[string][]string),
	}
	idx.walk(tree)
	return idx
}

func (idx *MenuIndex) walk(nodes []MenuNode) {
	for i := range nodes {
		n := &nodes[i]
		idx.byKey[n.Key] = n
		idx.keys = append(idx.keys, n.Key)
		if n.Path != "" {
			idx.byPath[n.Path] = n
		}
		for _, c := range n.Children {
			idx.children[n.Key] = append(idx.children[n.Key], c.Key)
		}
		idx.walk(n.Children)
	}
}

// KeyByPath 将路由路径翻译为权限 key
// 精确匹配优先，其次取路径边界上的最长前缀匹配（如 /customer/list/123 → customer-list）
// 未命中返回空串
func (idx *MenuIndex) KeyByPath(path string) string {
	if n, ok := idx.byPath[path]; ok {
		return n.Key
	}
	bestKey, bestLen := "", 0
	for p, n := range idx.byPath {
		if len(p) > bestLen && strings.HasPrefix(path, p+"/") {
			bestKey, bestLen = n.Key, len(p)
		}
	}
	return bestKey
}

// PathByKey 权限 key 对应的路由路径；未知 key 返回空串
func (idx *MenuIndex) PathByKey(key string) string {
	if n, ok := idx.byKey[key]; ok {
		return n.Path
	}
	return ""
}

// TitleByPath 路由路径对应的页面标题（静态元数据，无错误分支）
func (idx *MenuIndex) TitleByPath(path string) string {
	key := idx.KeyByPath(path)
	if key == "" {
		return ""
	}
	return idx.byKey[key].Title
}

// AllKeys 返回全部权限 key（先序）
func (idx *MenuIndex) AllKeys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Dependencies 父级权限勾选时应级联的直接子权限
func (idx *MenuIndex) Dependencies(key string) []string {
	deps := idx.children[key]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// RecommendedKeys 角色的推荐权限配置；未知角色按 viewer 处理
func RecommendedKeys(role Role) []string {
	keys, ok := DefaultRolePermissions[role]
	if !ok {
		keys = DefaultRolePermissions[RoleViewer]
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// ValidationResult 权限配置校验结果
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Missing  []string `json:"missing"`
	Invalid  []string `json:"invalid"`
	Warnings []string `json:"warnings"`
}

// Validate 校验一组权限 key 的完整性：
// 无效 key（不在菜单树中）与缺失的子级依赖分别收集
func (idx *MenuIndex) Validate(keys []string) ValidationResult {
	selected := make(map[string]bool, len(keys))
	for _, k := range keys {
		selected[k] = true
	}

	res := ValidationResult{Valid: true}
	seenMissing := make(map[string]bool)

	for _, k := range keys {
		if _, ok := idx.byKey[k]; !ok {
			res.Invalid = append(res.Invalid, k)
			res.Valid = false
			continue
		}
		for _, dep := range idx.children[k] {
			if !selected[dep] && !seenMissing[dep] {
				seenMissing[dep] = true
				res.Missing = append(res.Missing, dep)
				res.Warnings = append(res.Warnings, "权限 "+k+" 需要依赖权限 "+dep)
			}
		}
	}
	return res
}

// [自证通过] internal/permission/menu.go
