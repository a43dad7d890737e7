package utils

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "secret123" {
		t.Error("HashPassword returned plaintext")
	}
	if err := CheckPassword("secret123", hash); err != nil {
		t.Errorf("CheckPassword rejected correct password: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Error("CheckPassword accepted wrong password")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"valid date", "2024-02-07", time.Date(2024, time.February, 7, 0, 0, 0, 0, time.UTC), false},
		{"invalid format", "07/02/2024", time.Time{}, true},
		{"not a date", "soon", time.Time{}, true},
		{"out of range day", "2024-02-30", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range []string{"active", "inactive", "suspended"} {
		if !IsValidStatus(status) {
			t.Errorf("IsValidStatus(%q) = false, want true", status)
		}
	}
	if IsValidStatus("deleted") {
		t.Error("IsValidStatus(\"deleted\") = true, want false")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q, want %q", got, "helloworld")
	}
}
