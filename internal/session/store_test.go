package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Luolin0826/bodian-gateway/internal/permission"
)

func newTestStore() *Store {
	return NewStore(NewMemoryStorage(), time.Hour)
}

func testUser() *User {
	return &User{
		ID:           "u-1",
		Username:     "zhangsan",
		DisplayName:  "张三",
		Role:         permission.RoleSales,
		DepartmentID: "dept-1",
	}
}

func testSnapshot() *permission.Snapshot {
	return &permission.Snapshot{
		MenuKeys: []string{"dashboard", "customer-list"},
		Operations: map[permission.Module][]permission.Operation{
			permission.ModuleCustomer: {permission.OpView},
		},
		Data: permission.DataPermission{Scope: permission.ScopeOwn},
	}
}

// 会话持久化后重建应得到等价会话
func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "tok-abc", "up-sess-1", testUser(), testSnapshot())
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if !created.LoggedIn() {
		t.Fatal("新建会话应为已登录状态")
	}

	loaded, err := store.Load(ctx, created.ID)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if loaded.Token != "tok-abc" {
		t.Errorf("期望 Token=tok-abc，实际=%s", loaded.Token)
	}
	if loaded.UpstreamSessionID != "up-sess-1" {
		t.Errorf("期望 UpstreamSessionID=up-sess-1，实际=%s", loaded.UpstreamSessionID)
	}
	if loaded.User == nil || loaded.User.Username != "zhangsan" {
		t.Error("用户信息应随会话重建")
	}
	if loaded.Snapshot == nil || !loaded.Snapshot.HasMenuKey("customer-list") {
		t.Error("权限快照应随会话重建")
	}
	if loaded.Generation != 1 {
		t.Errorf("期望 Generation=1，实际=%d", loaded.Generation)
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)

	if err := store.Clear(ctx, sess.ID); err != nil {
		t.Fatalf("首次 Clear 失败: %v", err)
	}
	if err := store.Clear(ctx, sess.ID); err != nil {
		t.Fatalf("重复 Clear 应幂等: %v", err)
	}
	if err := store.Clear(ctx, ""); err != nil {
		t.Fatalf("空 ID Clear 应为空操作: %v", err)
	}

	if _, err := store.Load(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("清除后 Load 期望 ErrNotFound，实际: %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	mem := NewMemoryStorage()
	base := time.Now()
	mem.now = func() time.Time { return base }

	store := NewStore(mem, time.Minute)
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)

	mem.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := store.Load(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("过期会话 Load 期望 ErrNotFound，实际: %v", err)
	}
}

// 刷新代数守卫：会话状态变更之后，迟到的旧刷新结果必须被丢弃
func TestStore_CompleteRefresh_StaleGeneration(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)
	gen := sess.Generation

	// 期间管理员替换了权限（代数递增）
	if _, err := store.ReplacePermissions(ctx, sess.ID, testSnapshot()); err != nil {
		t.Fatalf("ReplacePermissions 失败: %v", err)
	}

	// 携带旧代数的刷新结果到达 → 丢弃
	if _, err := store.CompleteRefresh(ctx, sess.ID, gen, testUser(), &permission.Snapshot{MenuKeys: []string{"dashboard"}}); !errors.Is(err, ErrStaleRefresh) {
		t.Errorf("旧代数刷新期望 ErrStaleRefresh，实际: %v", err)
	}

	loaded, _ := store.Load(ctx, sess.ID)
	if !loaded.Snapshot.HasMenuKey("customer-list") {
		t.Error("被丢弃的刷新不应覆盖较新的权限快照")
	}
}

func TestStore_CompleteRefresh_SessionGone(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)
	_ = store.Clear(ctx, sess.ID)

	if _, err := store.CompleteRefresh(ctx, sess.ID, sess.Generation, testUser(), testSnapshot()); !errors.Is(err, ErrStaleRefresh) {
		t.Errorf("会话已清除时刷新期望 ErrStaleRefresh，实际: %v", err)
	}
}

func TestStore_CompleteRefresh_Success(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)

	updated, err := store.CompleteRefresh(ctx, sess.ID, sess.Generation, testUser(), testSnapshot())
	if err != nil {
		t.Fatalf("CompleteRefresh 应成功: %v", err)
	}
	if !updated.Snapshot.HasMenuKey("dashboard") {
		t.Error("刷新后的快照应落地")
	}
	if updated.Generation != sess.Generation {
		t.Error("正常刷新不应改变代数")
	}
}

func TestStore_TamperedStorage(t *testing.T) {
	mem := NewMemoryStorage()
	store := NewStore(mem, time.Hour)
	ctx := context.Background()

	sess, _ := store.Create(ctx, "tok", "", testUser(), nil)
	_ = mem.Set(ctx, keyPrefix+sess.ID, []byte("not-json"), time.Hour)

	if _, err := store.Load(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("被篡改的会话期望 ErrNotFound，实际: %v", err)
	}
}
