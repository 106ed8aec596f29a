package security

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPGenerator produces fixed-width decimal one-time codes from a
// per-service-instance random secret. The period matches the record TTL so a
// code stays stable for the lifetime of its store entry.
type TOTPGenerator struct {
	secret string
	period uint
	digits otp.Digits
}

// NewTOTPGenerator seeds a generator with a fresh random secret.
func NewTOTPGenerator(issuer string, ttl time.Duration, digits int) (*TOTPGenerator, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	var d otp.Digits
	switch digits {
	case 6:
		d = otp.DigitsSix
	case 8:
		d = otp.DigitsEight
	default:
		return nil, fmt.Errorf("digits must be 6 or 8, got %d", digits)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: issuer,
		Period:      uint(ttl.Seconds()),
		SecretSize:  20,
		Digits:      d,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	return &TOTPGenerator{
		secret: key.Secret(),
		period: uint(ttl.Seconds()),
		digits: d,
	}, nil
}

// Generate returns the current one-time code.
func (g *TOTPGenerator) Generate() (string, error) {
	code, err := totp.GenerateCodeCustom(g.secret, time.Now(), totp.ValidateOpts{
		Period:    g.period,
		Digits:    g.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}

	return code, nil
}

// Digits returns the configured code width.
func (g *TOTPGenerator) Digits() int {
	return g.digits.Length()
}
