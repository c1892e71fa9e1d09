package permission

import "testing"

func newTestResolver() *Resolver {
	return NewResolver(DefaultMenuTree)
}

func salesSnapshot() *Snapshot {
	return &Snapshot{
		MenuKeys: []string{"dashboard", "customer-list"},
		Operations: map[Module][]Operation{
			ModuleCustomer: {OpView, OpUpdate},
		},
		Data: DataPermission{Scope: ScopeOwn},
	}
}

// ── 菜单权限 ──

func TestHasMenuPermission_AdministrativeOverride(t *testing.T) {
	r := newTestResolver()
	paths := []string{"/dashboard", "/system/user", "/system/role", "/customer/list", "/no-such-path"}

	for _, role := range []Role{RoleSuperAdmin, RoleAdmin} {
		for _, p := range paths {
			if !r.HasMenuPermission(role, nil, p) {
				t.Errorf("%s 访问 %s 应放行", role, p)
			}
			if !r.HasMenuPermission(role, salesSnapshot(), p) {
				t.Errorf("%s 携带受限快照访问 %s 仍应放行", role, p)
			}
		}
	}
}

func TestHasMenuPermission_SnapshotAuthoritative(t *testing.T) {
	r := newTestResolver()
	snap := salesSnapshot()

	if !r.HasMenuPermission(RoleSales, snap, "/customer/list") {
		t.Error("快照授予 customer-list，/customer/list 应放行")
	}
	if r.HasMenuPermission(RoleSales, snap, "/system/user") {
		t.Error("快照未授予 system-user，/system/user 应拒绝")
	}
	// 快照非权威回退：sales 默认表含 script，但快照未授予 → 拒绝
	if r.HasMenuPermission(RoleSales, snap, "/script") {
		t.Error("快照非空时不应回退默认表")
	}
}

func TestHasMenuPermission_EmptySnapshotFallsBackToRoleDefaults(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		role Role
		path string
		want bool
	}{
		{RoleSales, "/customer/list", true},
		{RoleSales, "/system/user", false},
		{RoleViewer, "/knowledge", true},
		{RoleViewer, "/customer/list", false},
		{RoleManager, "/sales/stats", true},
	}
	for _, tc := range cases {
		if got := r.HasMenuPermission(tc.role, nil, tc.path); got != tc.want {
			t.Errorf("空快照 %s 访问 %s: 期望 %v，实际 %v", tc.role, tc.path, tc.want, got)
		}
		if got := r.HasMenuPermission(tc.role, &Snapshot{}, tc.path); got != tc.want {
			t.Errorf("零值快照 %s 访问 %s: 期望 %v，实际 %v", tc.role, tc.path, tc.want, got)
		}
	}
}

func TestHasMenuPermission_UnmatchedPath(t *testing.T) {
	r := newTestResolver()

	if r.HasMenuPermission(RoleSales, salesSnapshot(), "/unknown/page") {
		t.Error("未匹配的非系统路径应默认拒绝")
	}
	// /system 子树下未建模的路径按角色等级门禁
	if r.HasMenuPermission(RoleManager, salesSnapshot(), "/system/test-api") {
		t.Error("manager 访问未建模的 /system 路径应拒绝")
	}
}

func TestHasMenuPermission_LongestPrefixMatch(t *testing.T) {
	r := newTestResolver()
	snap := salesSnapshot()

	// /customer/list/123 应翻译到 customer-list 而非 customer
	if !r.HasMenuPermission(RoleSales, snap, "/customer/list/123") {
		t.Error("子路径应按最长前缀匹配到 customer-list")
	}
	if r.HasMenuPermission(RoleSales, snap, "/customer/follow/456") {
		t.Error("customer-follow 未被快照授予，子路径应拒绝")
	}
}

// ── 操作权限 ──

func TestHasOperationPermission_Basic(t *testing.T) {
	r := newTestResolver()
	snap := salesSnapshot()

	if !r.HasOperationPermission(RoleSales, snap, ModuleCustomer, OpView) {
		t.Error("快照授予 customer.view，应放行")
	}
	if r.HasOperationPermission(RoleSales, snap, ModuleCustomer, OpDelete) {
		t.Error("快照未授予 customer.delete，应拒绝")
	}
	if r.HasOperationPermission(RoleSales, snap, ModuleUser, OpView) {
		t.Error("快照未包含 user 模块，应拒绝")
	}
	if !r.HasOperationPermission(RoleAdmin, nil, ModuleSystem, OpReset) {
		t.Error("admin 操作权限短路放行")
	}
}

func TestHasOperationPermission_LevelGate(t *testing.T) {
	r := newTestResolver()
	snap := &Snapshot{
		Operations: map[Module][]Operation{
			ModuleCustomer: {OpUpdate},
		},
	}

	// sales(50) 满足 medium(50)，不满足 high(80)
	if !r.HasOperationPermission(RoleSales, snap, ModuleCustomer, OpUpdate, LevelMedium) {
		t.Error("sales 执行 medium 级操作应放行")
	}
	if r.HasOperationPermission(RoleSales, snap, ModuleCustomer, OpUpdate, LevelHigh) {
		t.Error("sales 执行 high 级操作应拒绝")
	}
	// 授权集与级别须同时满足：等级够但无授权 → 拒绝
	if r.HasOperationPermission(RoleManager, snap, ModuleCustomer, OpDelete, LevelLow) {
		t.Error("等级满足但授权集未包含操作，应拒绝")
	}
}

// 角色等级单调性：同一授权集下，高等级角色的判定不弱于低等级角色
func TestHasOperationPermission_MonotonicInRank(t *testing.T) {
	r := newTestResolver()
	snap := &Snapshot{
		Operations: map[Module][]Operation{
			ModuleSales: {OpExport},
		},
	}
	roles := []Role{RoleViewer, RoleTeacher, RoleSales, RoleManager, RoleAdmin, RoleSuperAdmin}
	levels := []Level{LevelLow, LevelMedium, LevelHigh}

	for _, lv := range levels {
		granted := false
		for _, role := range roles { // 等级升序
			got := r.HasOperationPermission(role, snap, ModuleSales, OpExport, lv)
			if granted && !got {
				t.Errorf("级别 %s: 低等级角色已放行而 %s 被拒绝，违反单调性", lv, role)
			}
			if got {
				granted = true
			}
		}
	}
}

func TestRequiresConfirmation(t *testing.T) {
	cases := []struct {
		module Module
		op     Operation
		want   bool
	}{
		{ModuleUser, OpDelete, true},
		{ModuleUser, OpReset, true},
		{ModuleUser, OpDisable, true},
		{ModuleRole, OpDelete, true},
		{ModuleDepartment, OpDelete, true},
		{ModuleSystem, OpReset, true},
		{ModuleUser, OpView, false},
		{ModuleCustomer, OpDelete, false},
		{ModuleScript, OpUpdate, false},
	}
	for _, tc := range cases {
		if got := RequiresConfirmation(tc.module, tc.op); got != tc.want {
			t.Errorf("RequiresConfirmation(%s, %s): 期望 %v，实际 %v", tc.module, tc.op, tc.want, got)
		}
	}
}

// ── 数据权限 ──

func TestDataScopeChecks(t *testing.T) {
	r := newTestResolver()

	all := &Snapshot{Data: DataPermission{Scope: ScopeAll}}
	if !r.HasRegionalAccess(RoleSales, all, "四川") {
		t.Error("scope=all 应无条件放行区域")
	}
	if !r.HasCustomerAccess(RoleViewer, all, "u1", "u2", "c1") {
		t.Error("scope=all 应无条件放行客户")
	}

	own := &Snapshot{Data: DataPermission{Scope: ScopeOwn, Regions: []string{"四川"}}}
	if !r.HasCustomerAccess(RoleSales, own, "u1", "u1", "c1") {
		t.Error("own 范围下本人创建的客户应放行")
	}
	if r.HasCustomerAccess(RoleSales, own, "u1", "u2", "c1") {
		t.Error("own 范围下他人创建的客户应拒绝")
	}
	if !r.HasRegionalAccess(RoleSales, own, "四川") {
		t.Error("own 范围下清单内区域应放行")
	}
	if r.HasRegionalAccess(RoleSales, own, "广东") {
		t.Error("own 范围下清单外区域应拒绝")
	}

	custom := &Snapshot{Data: DataPermission{
		Scope:       ScopeCustom,
		Departments: []string{"dept-2"},
		Customers:   []string{"c-9"},
	}}
	if !r.HasDepartmentAccess(RoleManager, custom, "dept-1", "dept-2") {
		t.Error("custom 范围下清单内部门应放行")
	}
	if !r.HasDepartmentAccess(RoleManager, custom, "dept-1", "dept-1") {
		t.Error("本人所在部门应始终可见")
	}
	if r.HasDepartmentAccess(RoleManager, custom, "dept-1", "dept-3") {
		t.Error("custom 范围下清单外部门应拒绝")
	}
	if !r.HasCustomerAccess(RoleManager, custom, "u1", "u2", "c-9") {
		t.Error("custom 范围下清单内客户应放行")
	}

	if !r.HasDepartmentAccess(RoleAdmin, nil, "", "any") {
		t.Error("管理角色数据权限短路放行")
	}
	if r.HasSensitiveAccess(RoleSales, nil, "phone") {
		t.Error("nil 快照下非管理角色应拒绝敏感字段")
	}
}

func TestHasSensitiveAccess(t *testing.T) {
	r := newTestResolver()
	snap := &Snapshot{Data: DataPermission{
		Scope:           ScopeDepartment,
		SensitiveFields: []string{"phone"},
	}}

	if !r.HasSensitiveAccess(RoleSales, snap, "phone") {
		t.Error("清单内敏感字段应放行")
	}
	if r.HasSensitiveAccess(RoleSales, snap, "id_card") {
		t.Error("清单外敏感字段应拒绝")
	}
}
