package service

import "testing"

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "alice", "password123", false},
		{"valid with underscore and dash", "a_b-c", "password123", false},
		{"min lengths", "abc", "12345678", false},
		{"max lengths", "abcdefghijklmnopqrstuvwxyz123456", "12345678", false},
		{"username too short", "ab", "password123", true},
		{"username too long", "abcdefghijklmnopqrstuvwxyz1234567", "password123", true},
		{"username with space", "ali ce", "password123", true},
		{"username with unicode", "алиса", "password123", true},
		{"username with dot", "alice.b", "password123", true},
		{"empty username", "", "password123", true},
		{"password too short", "alice", "1234567", true},
		{"password too long", "alice", string(make([]byte, 129)), true},
		{"empty password", "alice", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegistration(%q, len %d) error = %v, wantErr %v", tt.username, len(tt.password), err, tt.wantErr)
			}
		})
	}
}
