package utils

import (
	"strings"
	"testing"
)

func TestGenerateAccountNumber(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := GenerateAccountNumber()
		if !ValidateAccountNumber(n) {
			t.Fatalf("generated number fails validation: %s", n)
		}
		if n != strings.ToUpper(n) {
			t.Errorf("expected uppercase, got %s", n)
		}
		if seen[n] {
			t.Errorf("duplicate account number: %s", n)
		}
		seen[n] = true
	}
}

func TestValidateAccountNumber(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"ACC1A2B3C4D5E", true},
		{"ACC1234567890", true},
		{"acc1234567890", false},
		{"ACC123", false},
		{"XYZ1234567890", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateAccountNumber(tt.input); got != tt.valid {
			t.Errorf("ValidateAccountNumber(%q): expected %v got %v", tt.input, tt.valid, got)
		}
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID("trf")
	if !strings.HasPrefix(id, "trf-") {
		t.Errorf("expected trf- prefix, got %s", id)
	}
	if !ValidateTransferID(id) {
		t.Errorf("generated ID fails validation: %s", id)
	}
	if !ValidateUserID(GenerateID("usr")) {
		t.Error("generated user ID fails validation")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cretpass" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPassword("s3cretpass", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
