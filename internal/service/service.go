package service

import (
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/repository"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Audit    AuditService
	Export   ExportService
	Reminder ReminderService
	Draft    DraftService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store *session.Store,
	resolver *permission.Resolver,
	client *upstream.Client,
	logger *zap.Logger,
) *Service {
	audit := NewAuditService(repo, logger)
	return &Service{
		Auth:     NewAuthService(cfg, store, client, audit, logger),
		Audit:    audit,
		Export:   NewExportService(logger),
		Reminder: NewReminderService(cfg, resolver, client, logger),
		Draft:    NewDraftService(client, logger),
	}
}

// [自证通过] internal/service/service.go
