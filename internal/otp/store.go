// Package otp stores one-time passwords with a bounded lifetime. The store
// interface is deliberately small so tests and deployments can swap backends;
// the default backend keeps codes in Redis so they survive process restarts.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates no OTP is pending for the phone number, either
// because none was requested or because it expired.
var ErrNotFound = errors.New("no pending otp for this phone number")

// DefaultTTL is how long an issued OTP stays valid.
const DefaultTTL = 10 * time.Minute

// Store keeps one pending OTP per phone number.
type Store interface {
	Put(ctx context.Context, phone, code string) (expiresAt time.Time, err error)
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed store. A zero ttl falls back to
// DefaultTTL.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) Store {
	if prefix == "" {
		prefix = "otp"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *redisStore) key(phone string) string {
	return fmt.Sprintf("%s:%s", s.prefix, phone)
}

func (s *redisStore) Put(ctx context.Context, phone, code string) (time.Time, error) {
	if err := s.client.Set(ctx, s.key(phone), code, s.ttl).Err(); err != nil {
		return time.Time{}, fmt.Errorf("failed to store otp: %w", err)
	}

	return s.now().Add(s.ttl), nil
}

func (s *redisStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, s.key(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read otp: %w", err)
	}

	return code, nil
}

func (s *redisStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, s.key(phone)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// GenerateCode produces a random numeric code of the given length.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
