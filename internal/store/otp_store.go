// Package store holds externally owned key-value state shared by all
// service instances.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpTTL = 5 * time.Minute

var (
	ErrOTPUnavailable = errors.New("otp store unavailable")
	ErrOTPMismatch    = errors.New("otp invalid or expired")
)

// OTPStore keeps one-time codes in redis with a TTL so every instance sees
// the same state and codes expire without cleanup jobs.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Available() bool {
	return s != nil && s.client != nil
}

// Issue generates a six digit code for the email and stores it for five
// minutes, replacing any previous code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	if !s.Available() {
		return "", ErrOTPUnavailable
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.client.Set(ctx, otpKey(email), code, otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the stored code. A code can be used at most once.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	if !s.Available() {
		return ErrOTPUnavailable
	}

	stored, err := s.client.GetDel(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return ErrOTPMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrOTPMismatch
	}
	return nil
}

func otpKey(email string) string {
	return "otp:" + email
}
