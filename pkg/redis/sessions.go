package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionTTL = 7 * 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// Principal is the authenticated identity attached to a request.
type Principal struct {
	CustomerID int64  `json:"customer_id"`
	Role       string `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p.Role == "admin"
}

// Sessions stores opaque bearer tokens in redis with a sliding TTL.
type Sessions struct {
	client *redis.Client
}

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *Sessions) Create(ctx context.Context, customerID int64, role string) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(Principal{CustomerID: customerID, Role: role})
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKey(token), payload, sessionTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Sessions) Get(ctx context.Context, token string) (*Principal, error) {
	payload, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var principal Principal
	if err := json.Unmarshal([]byte(payload), &principal); err != nil {
		return nil, err
	}

	// Sliding expiry: any authenticated request keeps the session alive.
	s.client.Expire(ctx, sessionKey(token), sessionTTL)

	return &principal, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
