package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetCodeNotFound indicates no reset code is stored for the email.
var ErrResetCodeNotFound = errors.New("reset code not found")

// ResetCodeRepository handles password reset code storage in Redis.
// The expiry instant is stored explicitly alongside the code; the key TTL
// is a backstop so abandoned codes don't accumulate.
type ResetCodeRepository struct {
	client *redis.Client
}

// NewResetCodeRepository creates a new reset code repository instance
func NewResetCodeRepository(client *redis.Client) *ResetCodeRepository {
	return &ResetCodeRepository{
		client: client,
	}
}

// Store saves a reset code for the email, replacing any previous one.
func (r *ResetCodeRepository) Store(ctx context.Context, email, code string, expiresAt time.Time) error {
	key := resetCodeKey(email)

	err := r.client.HSet(ctx, key, "code", code, "expires_at", expiresAt.Unix()).Err()
	if err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	// TTL backstop: keep the key a little past its logical expiry.
	if err := r.client.Expire(ctx, key, time.Until(expiresAt)+time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set TTL on reset code: %w", err)
	}

	return nil
}

// Get retrieves the stored code and its expiry instant for the email.
func (r *ResetCodeRepository) Get(ctx context.Context, email string) (string, time.Time, error) {
	key := resetCodeKey(email)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get reset code: %w", err)
	}
	if len(fields) == 0 {
		return "", time.Time{}, ErrResetCodeNotFound
	}

	unix, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse reset code expiry: %w", err)
	}

	return fields["code"], time.Unix(unix, 0), nil
}

// Delete removes a used or superseded reset code.
func (r *ResetCodeRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, resetCodeKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete reset code: %w", err)
	}
	return nil
}

// resetCodeKey generates a Redis key for reset codes.
// The email is hashed so addresses don't appear in the keyspace.
func resetCodeKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return fmt.Sprintf("password_reset:%s", hex.EncodeToString(sum[:]))
}
