package service

import "testing"

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, 50},
		{"negative falls back to default", -3, 50},
		{"just over cap clamps to max", 201, 200},
		{"far over cap clamps to max", 500, 200},
		{"valid small", 1, 1},
		{"valid default", 50, 50},
		{"valid at cap", 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLimit(tt.limit); got != tt.want {
				t.Errorf("ClampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}
