package referral

import (
	"strings"
	"testing"
)

func TestBonusFor(t *testing.T) {
	if got := BonusFor(false); got != 100 {
		t.Errorf("BonusFor(false) = %d, want 100", got)
	}
	if got := BonusFor(true); got != 150 {
		t.Errorf("BonusFor(true) = %d, want 150", got)
	}
}

func TestNewCodeShape(t *testing.T) {
	code, err := NewCode()
	if err != nil {
		t.Fatalf("NewCode() error: %v", err)
	}
	if len(code) != codeLength {
		t.Errorf("code %q has length %d, want %d", code, len(code), codeLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Errorf("code %q contains %q, not in alphabet", code, r)
		}
	}
}

func TestNewCodeOmitsAmbiguousCharacters(t *testing.T) {
	for _, bad := range "0O1IL" {
		if strings.ContainsRune(codeAlphabet, bad) {
			t.Errorf("alphabet contains ambiguous character %q", bad)
		}
	}
}

func TestNewCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("NewCode() error: %v", err)
		}
		seen[code] = true
	}
	// 50 identical draws from a 30^8 space would mean a broken generator.
	if len(seen) < 2 {
		t.Error("NewCode() produced no variation across 50 draws")
	}
}

func TestIsDisposableEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"pup@mailinator.com", true},
		{"pup@MAILINATOR.COM", true},
		{"pup@yopmail.com", true},
		{"pup@gmail.com", false},
		{"pup@pawme.app", false},
		{"not-an-email", false},
		{"trailing@", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDisposableEmail(tt.email); got != tt.want {
			t.Errorf("IsDisposableEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
