package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/account-otp-service/internal/repository"
)

const (
	defaultOTPPrefix = "account:otp"

	fieldHashedCode = "hashed_code"
	fieldAttempts   = "attempts"
)

// setCodeScript writes the hashed code, the zero attempt counter, and the TTL
// in one atomic round trip, refusing to touch a live record. Without the
// script a record could briefly exist without its expiry and outlive a crash.
var setCodeScript = red.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2], ARGV[3], 0)
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// incrementScript bumps the attempt counter only while the record is live, so
// an increment racing an expiry cannot resurrect the key without a TTL.
var incrementScript = red.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

// OTPStore persists short-lived hashed one-time codes in Redis, one record
// per identity.
type OTPStore struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewOTPStore constructs an OTP store with the provided Redis client, key
// prefix, and record TTL.
func NewOTPStore(client *red.Client, keyPrefix string, ttl time.Duration) *OTPStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}

	return &OTPStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// SetCode writes the hashed code with attempts reset to zero and the TTL
// applied atomically. Returns false when a live record already exists.
func (s *OTPStore) SetCode(ctx context.Context, identity, hashedCode string) (bool, error) {
	identity = strings.TrimSpace(identity)
	hashedCode = strings.TrimSpace(hashedCode)

	switch {
	case identity == "":
		return false, errors.New("identity is required")
	case hashedCode == "":
		return false, errors.New("hashed code is required")
	case s.ttl <= 0:
		return false, fmt.Errorf("%w: ttl must be positive", repository.ErrOTPCreationFailed)
	}

	created, err := setCodeScript.Run(ctx, s.client,
		[]string{s.key(identity)},
		fieldHashedCode, hashedCode, fieldAttempts, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", repository.ErrOTPCreationFailed, err)
	}

	return created == 1, nil
}

// GetCode retrieves the stored hash for the identity. Absent and expired
// records are indistinguishable and both yield repository.ErrNotFound.
func (s *OTPStore) GetCode(ctx context.Context, identity string) (string, error) {
	hashed, err := s.client.HGet(ctx, s.key(identity), fieldHashedCode).Result()
	if errors.Is(err, red.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis hget otp code: %w", err)
	}
	if hashed == "" {
		return "", repository.ErrNotFound
	}

	return hashed, nil
}

// Delete removes the OTP record, enforcing single-use semantics.
func (s *OTPStore) Delete(ctx context.Context, identity string) error {
	deleted, err := s.client.Del(ctx, s.key(identity)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrOTPRemovalFailed, err)
	}
	if deleted == 0 {
		return repository.ErrOTPRemovalFailed
	}

	return nil
}

// Exists reports whether a live record exists for the identity.
func (s *OTPStore) Exists(ctx context.Context, identity string) (bool, error) {
	count, err := s.client.Exists(ctx, s.key(identity)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists otp: %w", err)
	}

	return count > 0, nil
}

// IncrementAttempts atomically bumps the verification attempt counter. The
// increment is skipped when the record expired in flight.
func (s *OTPStore) IncrementAttempts(ctx context.Context, identity string) error {
	if err := incrementScript.Run(ctx, s.client, []string{s.key(identity)}, fieldAttempts).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrOTPAttemptTracking, err)
	}

	return nil
}

// GetAttempts returns the current attempt count for the identity, or -1 when
// no record exists. The sentinel distinguishes "no record" from "zero
// attempts recorded" without raising an error.
func (s *OTPStore) GetAttempts(ctx context.Context, identity string) (int, error) {
	raw, err := s.client.HGet(ctx, s.key(identity), fieldAttempts).Result()
	if errors.Is(err, red.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis hget otp attempts: %w", err)
	}

	attempts, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse otp attempts: %w", err)
	}

	return attempts, nil
}

func (s *OTPStore) key(identity string) string {
	return fmt.Sprintf("%s:%s", s.prefix, strings.TrimSpace(identity))
}
