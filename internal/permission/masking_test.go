package permission

import "testing"

func TestIsMasked(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"138****1234", true},
		{"abc***@example.com", true},
		{"李**", true},
		{"13812341234", false},
		{"normal@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsMasked(tc.value); got != tc.want {
			t.Errorf("IsMasked(%q): 期望 %v，实际 %v", tc.value, tc.want, got)
		}
	}
}

func TestMaskValue(t *testing.T) {
	if got := MaskValue("13812341234", "phone"); got != "138****1234" {
		t.Errorf("手机号脱敏: 实际 %q", got)
	}
	if got := MaskValue("sales@example.com", "email"); got != "s***@example.com" {
		t.Errorf("邮箱脱敏: 实际 %q", got)
	}
	// 已脱敏的值不做二次处理
	if got := MaskValue("138****1234", "phone"); got != "138****1234" {
		t.Errorf("已脱敏值应原样返回: 实际 %q", got)
	}
	if got := MaskValue("", "phone"); got != "" {
		t.Errorf("空值应原样返回: 实际 %q", got)
	}
	// 通用字段保留首尾
	if got := MaskValue("abcdef", "remark"); got != "a****f" {
		t.Errorf("通用脱敏: 实际 %q", got)
	}
}
