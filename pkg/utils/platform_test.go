//go:build !mobile

package utils

import "testing"

func TestIsMobile_Desktop(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"0", false},
		{"1", true},
	}
	for _, tt := range tests {
		t.Run("env="+tt.value, func(t *testing.T) {
			t.Setenv(MobileEmulateEnv, tt.value)
			if got := IsMobile(); got != tt.want {
				t.Errorf("IsMobile() = %v, want %v", got, tt.want)
			}
		})
	}
}
