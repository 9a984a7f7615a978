package notifications

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sosika-app/sosika-backend/config"
)

// TokenStore keeps device tokens and vendor push subscriptions in redis.
// Everything here is transient: losing the store only means missed pushes.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore() (*TokenStore, error) {
	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, err
	}
	return &TokenStore{rdb: redis.NewClient(opt)}, nil
}

func userKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func vendorKey(vendorID uuid.UUID) string {
	return "push:vendor:" + vendorID.String()
}

func (s *TokenStore) SaveToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.rdb.Set(ctx, userKey(userID), token, 0).Err()
}

// Token returns the user's device token, or "" when none is registered.
func (s *TokenStore) Token(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.rdb.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *TokenStore) RemoveToken(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, userKey(userID)).Err()
}

// AddVendorSubscription appends a web-push subscription to the vendor's set.
func (s *TokenStore) AddVendorSubscription(ctx context.Context, vendorID uuid.UUID, sub json.RawMessage) error {
	subs, err := s.VendorSubscriptions(ctx, vendorID)
	if err != nil {
		return err
	}
	subs = append(subs, sub)
	return s.SetVendorSubscriptions(ctx, vendorID, subs)
}

func (s *TokenStore) VendorSubscriptions(ctx context.Context, vendorID uuid.UUID) ([]json.RawMessage, error) {
	data, err := s.rdb.Get(ctx, vendorKey(vendorID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var subs []json.RawMessage
	if err := json.Unmarshal([]byte(data), &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *TokenStore) SetVendorSubscriptions(ctx context.Context, vendorID uuid.UUID, subs []json.RawMessage) error {
	data, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, vendorKey(vendorID), data, 0).Err()
}

func (s *TokenStore) Close() error {
	return s.rdb.Close()
}
