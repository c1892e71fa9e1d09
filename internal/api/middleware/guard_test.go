package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/internal/dto"
	"github.com/Luolin0826/bodian-gateway/internal/model"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/repository"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

// ── Stub AuthService ──

type stubAuthService struct {
	refreshResult *session.Session
	refreshErr    error
	refreshCalls  int
	terminated    []upstream.TerminationReason
	loggedOut     int
}

func (s *stubAuthService) Login(context.Context, *dto.LoginRequest, service.LoginMeta) (*session.Session, error) {
	return nil, nil
}

func (s *stubAuthService) Logout(context.Context, *session.Session) {
	s.loggedOut++
}

func (s *stubAuthService) Refresh(context.Context, *session.Session) (*session.Session, error) {
	s.refreshCalls++
	return s.refreshResult, s.refreshErr
}

func (s *stubAuthService) ReplacePermissions(context.Context, string, *permission.Snapshot) (*session.Session, error) {
	return nil, nil
}

func (s *stubAuthService) Terminate(_ context.Context, _ *session.Session, reason upstream.TerminationReason) {
	s.terminated = append(s.terminated, reason)
}

// ── Stub AuditService ──

type stubAuditService struct {
	entries []model.AuditEntry
}

func (s *stubAuditService) RecordLoginEvent(context.Context, *model.LoginEvent) {}

func (s *stubAuditService) RecordEntry(_ context.Context, entry *model.AuditEntry) {
	s.entries = append(s.entries, *entry)
}

func (s *stubAuditService) ListLoginEvents(context.Context, repository.LoginEventFilter) ([]model.LoginEvent, int64, error) {
	return nil, 0, nil
}

func (s *stubAuditService) ListEntries(context.Context, repository.AuditEntryFilter) ([]model.AuditEntry, int64, error) {
	return nil, 0, nil
}

// ── 测试脚手架 ──

func newGuardRouter(sess *session.Session, auth *stubAuthService, audit *stubAuditService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolver := permission.NewResolver(permission.DefaultMenuTree)

	app := r.Group("/app")
	app.Use(func(c *gin.Context) {
		c.Set(sessionKey, sess)
		c.Next()
	})
	app.Use(RouteGuard(resolver, auth, audit, zap.NewNop()))
	app.GET("/*path", func(c *gin.Context) {
		c.String(http.StatusOK, "page")
	})
	return r
}

func navigate(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/app"+path, nil)
	r.ServeHTTP(w, req)
	return w
}

func salesGuardSession() *session.Session {
	return &session.Session{
		ID:    "s1",
		Token: "tok",
		User:  &session.User{ID: "u1", Username: "alice", Role: permission.RoleSales},
		Snapshot: &permission.Snapshot{
			MenuKeys: []string{"dashboard", "customer", "customer-list", "script"},
		},
		Generation: 1,
	}
}

func TestRouteGuard_PublicPageSkipsAuth(t *testing.T) {
	r := newGuardRouter(&session.Session{}, &stubAuthService{}, &stubAuditService{})

	for _, path := range []string{"/login", "/403", "/404", "/error", "/account-disabled"} {
		w := navigate(r, path)
		if w.Code != http.StatusOK {
			t.Errorf("公开页 %s 应放行, 实际 %d", path, w.Code)
		}
	}
}

func TestRouteGuard_NotLoggedIn_RedirectsToLogin(t *testing.T) {
	r := newGuardRouter(&session.Session{}, &stubAuthService{}, &stubAuditService{})

	w := navigate(r, "/customer/list")
	if w.Code != http.StatusFound {
		t.Fatalf("应返回 302, 实际 %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if loc != "/login?redirect=/customer/list" {
		t.Errorf("应携带原目标跳转登录页, 实际 %s", loc)
	}
}

func TestRouteGuard_LoggedInLoginPage_RedirectsToDashboard(t *testing.T) {
	r := newGuardRouter(salesGuardSession(), &stubAuthService{}, &stubAuditService{})

	w := navigate(r, "/login")
	if w.Code != http.StatusFound {
		t.Fatalf("应返回 302, 实际 %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("已登录访问登录页应跳工作台, 实际 %s", loc)
	}
}

func TestRouteGuard_Allowed_SetsPageTitle(t *testing.T) {
	r := newGuardRouter(salesGuardSession(), &stubAuthService{}, &stubAuditService{})

	w := navigate(r, "/customer/list")
	if w.Code != http.StatusOK {
		t.Fatalf("应放行, 实际 %d", w.Code)
	}
	if title := w.Header().Get("X-Page-Title"); title != "客户列表" {
		t.Errorf("应设置页面标题, 实际 %q", title)
	}
}

func TestRouteGuard_Denied_RedirectsToProfileAndAudits(t *testing.T) {
	audit := &stubAuditService{}
	r := newGuardRouter(salesGuardSession(), &stubAuthService{}, audit)

	// sales 快照中无 system 权限
	w := navigate(r, "/system/user")
	if w.Code != http.StatusFound {
		t.Fatalf("应返回 302, 实际 %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/user-center/profile" {
		t.Errorf("拒绝后应跳转个人信息页, 实际 %s", loc)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("应记录一条审计, 实际 %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Action != model.AuditActionNavigation || entry.Decision != model.AuditDecisionDeny {
		t.Errorf("审计内容错误: %+v", entry)
	}
	if entry.Path != "/system/user" {
		t.Errorf("审计应带目标路径: %s", entry.Path)
	}
}

func TestRouteGuard_DashboardExempt(t *testing.T) {
	sess := salesGuardSession()
	sess.Snapshot = &permission.Snapshot{MenuKeys: []string{"script"}} // 快照里没有 dashboard
	r := newGuardRouter(sess, &stubAuthService{}, &stubAuditService{})

	for _, path := range []string{"/", "/dashboard"} {
		w := navigate(r, path)
		if w.Code != http.StatusOK {
			t.Errorf("%s 应免权限判定放行, 实际 %d", path, w.Code)
		}
	}
}

func TestRouteGuard_EmptySnapshot_TriggersRefresh(t *testing.T) {
	sess := salesGuardSession()
	sess.Snapshot = nil

	refreshed := salesGuardSession()
	auth := &stubAuthService{refreshResult: refreshed}
	r := newGuardRouter(sess, auth, &stubAuditService{})

	w := navigate(r, "/customer/list")
	if w.Code != http.StatusOK {
		t.Fatalf("刷新成功后应放行, 实际 %d", w.Code)
	}
	if auth.refreshCalls != 1 {
		t.Errorf("应恰好刷新一次, 实际 %d", auth.refreshCalls)
	}
}

func TestRouteGuard_RefreshDisabled_RedirectsToDisabledPage(t *testing.T) {
	sess := salesGuardSession()
	sess.Snapshot = nil

	auth := &stubAuthService{
		refreshErr: &upstream.SessionTerminatedError{Reason: upstream.ReasonAccountDisabled},
	}
	r := newGuardRouter(sess, auth, &stubAuditService{})

	w := navigate(r, "/customer/list")
	if w.Code != http.StatusFound {
		t.Fatalf("应返回 302, 实际 %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/account-disabled" {
		t.Errorf("账号禁用应跳转禁用页, 实际 %s", loc)
	}
	if len(auth.terminated) != 1 || auth.terminated[0] != upstream.ReasonAccountDisabled {
		t.Errorf("应触发会话终止清理: %+v", auth.terminated)
	}
}

func TestRouteGuard_RefreshFailure_LogsOutToLogin(t *testing.T) {
	sess := salesGuardSession()
	sess.Snapshot = nil

	auth := &stubAuthService{
		refreshErr: &upstream.NetworkError{Err: context.DeadlineExceeded},
	}
	r := newGuardRouter(sess, auth, &stubAuditService{})

	w := navigate(r, "/customer/list")
	if w.Code != http.StatusFound {
		t.Fatalf("应返回 302, 实际 %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("刷新失败应回登录页, 实际 %s", loc)
	}
	if auth.loggedOut != 1 {
		t.Errorf("应清理本地会话: %d", auth.loggedOut)
	}
}

// [自证通过] internal/api/middleware/guard_test.go
