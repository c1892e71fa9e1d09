package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Luolin0826/bodian-gateway/config"
	"github.com/Luolin0826/bodian-gateway/internal/dto"
	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/service"
	"github.com/Luolin0826/bodian-gateway/internal/session"
	"github.com/Luolin0826/bodian-gateway/pkg/jwt"
	"github.com/Luolin0826/bodian-gateway/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	cfg       *config.Config
	authSvc   service.AuthService
	resolver  *permission.Resolver
	jwtMgr    *jwt.Manager
	errMapper *errorMapper
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(
	cfg *config.Config,
	authSvc service.AuthService,
	resolver *permission.Resolver,
	jwtMgr *jwt.Manager,
	errMapper *errorMapper,
) *AuthHandler {
	return &AuthHandler{
		cfg:       cfg,
		authSvc:   authSvc,
		resolver:  resolver,
		jwtMgr:    jwtMgr,
		errMapper: errMapper,
	}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.authSvc.Login(c.Request.Context(), &req, service.LoginMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.errMapper.handle(c, currentSession(c), err)
		return
	}

	token, err := h.jwtMgr.GenerateSessionToken(sess.ID, sess.User.ID, string(sess.User.Role))
	if err != nil {
		response.InternalError(c)
		return
	}
	setSessionCookie(c, &h.cfg.Session, token)

	response.OK(c, h.loginResponse(sess))
}

// Logout 用户登出（幂等）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authSvc.Logout(c.Request.Context(), currentSession(c))
	clearSessionCookie(c, &h.cfg.Session)
	response.OK(c, nil)
}

// Me 当前用户与生效权限
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess := currentSession(c)
	response.OK(c, h.loginResponse(sess))
}

// RefreshPermissions 主动刷新权限快照
// POST /api/v1/auth/permissions/refresh
func (h *AuthHandler) RefreshPermissions(c *gin.Context) {
	sess := currentSession(c)
	updated, err := h.authSvc.Refresh(c.Request.Context(), sess)
	if err != nil {
		h.errMapper.handle(c, sess, err)
		return
	}
	response.OK(c, h.loginResponse(updated))
}

// ReplacePermissions 整体替换权限快照（管理端）
// PUT /api/v1/auth/permissions
func (h *AuthHandler) ReplacePermissions(c *gin.Context) {
	var req dto.PermissionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	snap := snapshotFromRequest(&req)

	// 菜单 key 合法性校验；缺失依赖只作为 Warnings，不阻断
	result := h.resolver.Menu().Validate(snap.MenuKeys)
	if !result.Valid {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "菜单权限配置不合法",
			"无效的菜单权限: "+strings.Join(result.Invalid, ", "))
		return
	}

	sess := currentSession(c)
	updated, err := h.authSvc.ReplacePermissions(c.Request.Context(), sess.ID, snap)
	if err != nil {
		h.errMapper.handle(c, sess, err)
		return
	}
	response.OK(c, h.loginResponse(updated))
}

func (h *AuthHandler) loginResponse(sess *session.Session) dto.LoginResponse {
	resp := dto.LoginResponse{}
	if sess.User != nil {
		resp.User = dto.UserResponse{
			ID:           sess.User.ID,
			Username:     sess.User.Username,
			DisplayName:  sess.User.DisplayName,
			Role:         string(sess.User.Role),
			Avatar:       sess.User.Avatar,
			DepartmentID: sess.User.DepartmentID,
		}
	}
	resp.Permissions = dto.NewPermissionsResponse(sess.Snapshot, sess.Snapshot.Empty())
	return resp
}

func snapshotFromRequest(req *dto.PermissionUpdateRequest) *permission.Snapshot {
	snap := &permission.Snapshot{
		MenuKeys:   req.Menu,
		Operations: make(map[permission.Module][]permission.Operation, len(req.Operations)),
	}
	for mod, ops := range req.Operations {
		list := make([]permission.Operation, len(ops))
		for i, op := range ops {
			list[i] = permission.Operation(op)
		}
		snap.Operations[permission.Module(mod)] = list
	}
	if req.Data != nil {
		snap.Data = permission.DataPermission{
			Scope:             permission.DataScope(req.Data.Scope),
			Regions:           req.Data.Regions,
			Departments:       req.Data.Departments,
			Customers:         req.Data.Customers,
			SensitiveFields:   req.Data.SensitiveFields,
			ProjectCategories: req.Data.ProjectCategories,
		}
	}
	return snap
}

// [自证通过] internal/api/handler/auth_handler.go
