package security

import (
	"testing"
	"time"
)

func TestTOTPGenerator_ProducesFixedWidthDigits(t *testing.T) {
	gen, err := NewTOTPGenerator("account-otp-service", 5*time.Minute, 6)
	if err != nil {
		t.Fatalf("NewTOTPGenerator returned error: %v", err)
	}

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected decimal digits only, got %q", code)
		}
	}
	if gen.Digits() != 6 {
		t.Fatalf("expected Digits() == 6, got %d", gen.Digits())
	}
}

func TestTOTPGenerator_EightDigitWidth(t *testing.T) {
	gen, err := NewTOTPGenerator("account-otp-service", 5*time.Minute, 8)
	if err != nil {
		t.Fatalf("NewTOTPGenerator returned error: %v", err)
	}

	code, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("expected 8 digits, got %q", code)
	}
}

func TestTOTPGenerator_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewTOTPGenerator("account-otp-service", 0, 6); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
	if _, err := NewTOTPGenerator("account-otp-service", 5*time.Minute, 7); err == nil {
		t.Fatalf("expected error for unsupported digit width")
	}
}

func TestTOTPGenerator_SecretsAreUnique(t *testing.T) {
	first, err := NewTOTPGenerator("account-otp-service", 5*time.Minute, 6)
	if err != nil {
		t.Fatalf("NewTOTPGenerator returned error: %v", err)
	}
	second, err := NewTOTPGenerator("account-otp-service", 5*time.Minute, 6)
	if err != nil {
		t.Fatalf("NewTOTPGenerator returned error: %v", err)
	}
	if first.secret == second.secret {
		t.Fatalf("two generators must not share a secret")
	}
}
