package upstream

import "fmt"

// ── 出站调用错误分类 ──
//
// 会话相关错误（AuthError / SessionTerminatedError）由网关集中处理一次，
// 各 Handler 不得再各自兜底；其余错误向调用方透传，由其决定呈现方式。

// TerminationReason 401 的细分终止原因
type TerminationReason string

const (
	ReasonTokenRevoked    TerminationReason = "token_revoked"
	ReasonSessionExpired  TerminationReason = "session_expired"
	ReasonAccountDisabled TerminationReason = "account_disabled"
	ReasonExpired         TerminationReason = "expired" // 通用登录状态失效
)

// AuthError 登录接口本身返回的凭证错误
// 原样向登录页透传，不触发任何会话清理或跳转
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "用户名或密码错误"
	}
	return e.Message
}

// SessionTerminatedError 登录态被后台单向终止（撤销/过期/禁用）
// 触发会话清除；account_disabled 跳转禁用页，其余跳转登录页
type SessionTerminatedError struct {
	Reason  TerminationReason
	Message string
}

func (e *SessionTerminatedError) Error() string {
	return fmt.Sprintf("登录状态已终止(%s): %s", e.Reason, e.Message)
}

// PermissionDeniedError 403 且单次重试后仍失败
// 仅提示用户，不清理会话、不跳转
type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	if e.Message == "" {
		return "您没有访问此资源的权限"
	}
	return e.Message
}

// ServerError 404/500 及其他未分类状态码
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("上游返回 HTTP %d: %s", e.Status, e.Message)
}

// NetworkError 请求已发出但未收到响应（含超时）
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("网络连接异常: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError 请求构造失败，从未发出
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("请求配置错误: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ProtocolError 传输层成功但响应不符合约定（如 2xx 空响应体）
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "上游响应异常: " + e.Message
}

// [自证通过] internal/upstream/errors.go
