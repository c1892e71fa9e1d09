package handler

import (
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
	"github.com/Luolin0826/bodian-gateway/pkg/jwt"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Nav      *NavHandler
	Export   *ExportHandler
	Reminder *ReminderHandler
	Audit    *AuditHandler
	Draft    *DraftHandler
	Proxy    *ProxyHandler
	Page     *PageHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(
	cfg *config.Config,
	svc *service.Service,
	resolver *permission.Resolver,
	jwtMgr *jwt.Manager,
	client *upstream.Client,
	logger *zap.Logger,
) *Handler {
	errMapper := newErrorMapper(cfg, svc.Auth, logger)
	return &Handler{
		Auth:     NewAuthHandler(cfg, svc.Auth, resolver, jwtMgr, errMapper),
		Nav:      NewNavHandler(resolver),
		Export:   NewExportHandler(svc.Export, svc.Audit),
		Reminder: NewReminderHandler(svc.Reminder, errMapper),
		Audit:    NewAuditHandler(svc.Audit),
		Draft:    NewDraftHandler(svc.Draft, errMapper),
		Proxy:    NewProxyHandler(client, errMapper, logger),
		Page:     NewPageHandler(resolver),
	}
}

// [自证通过] internal/api/handler/handler.go
