package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-service/internal/entity"
)

const idempotencyTTL = 24 * time.Hour

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDuplicateKey    = errors.New("idempotent key already exists")
)

// Store keeps checkout sessions, login tokens and idempotency keys in redis.
type Store struct {
	rdb         *redis.Client
	checkoutTTL time.Duration
}

func NewStore(rdb *redis.Client, checkoutTTL time.Duration) *Store {
	return &Store{rdb: rdb, checkoutTTL: checkoutTTL}
}

func checkoutKey(id string) string {
	return fmt.Sprintf("checkout:%s", id)
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

func tokenKey(email string) string {
	return fmt.Sprintf("token:%s", email)
}

// SaveCheckout stores the session and refreshes its TTL.
func (s *Store) SaveCheckout(ctx context.Context, checkout *entity.CheckoutSession) error {
	value, err := json.Marshal(checkout)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, checkoutKey(checkout.ID), value, s.checkoutTTL).Err()
}

func (s *Store) LoadCheckout(ctx context.Context, id string) (*entity.CheckoutSession, error) {
	value, err := s.rdb.Get(ctx, checkoutKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var checkout entity.CheckoutSession
	if err := json.Unmarshal(value, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (s *Store) DeleteCheckout(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, checkoutKey(id)).Err()
}

func (s *Store) SaveToken(ctx context.Context, email, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, tokenKey(email), token, ttl).Err()
}

func (s *Store) GetToken(ctx context.Context, email string) (string, error) {
	token, err := s.rdb.Get(ctx, tokenKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	return token, err
}

// ClaimIdempotencyKey records key for 24 hours. A key that was already
// claimed returns ErrDuplicateKey.
func (s *Store) ClaimIdempotencyKey(ctx context.Context, key string) error {
	ok, err := s.rdb.SetNX(ctx, idempotencyKey(key), "exists", idempotencyTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateKey
	}
	return nil
}

// ReleaseIdempotencyKey frees a claimed key so a rejected request can be
// resubmitted with it.
func (s *Store) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(key)).Err()
}
