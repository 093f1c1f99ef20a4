package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no session exists for the user
var ErrSessionNotFound = errors.New("session not found")

// Cache stores the active session token per user in Redis. Writing a new
// session overwrites the previous one, so a user has at most one active
// session token at a time.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New creates a session cache with the given TTL
func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(userID uuid.UUID) string {
	return "session:" + userID.String()
}

// Set stores the user's session token, replacing any previous session
func (c *Cache) Set(ctx context.Context, userID uuid.UUID, token string) error {
	if err := c.client.Set(ctx, sessionKey(userID), token, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the user's current session token
func (c *Cache) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := c.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, nil
}

// Delete removes the user's session
func (c *Cache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Validate checks that the presented token matches the cached session.
// A missing Redis backend fails open so an outage does not lock everyone
// out; a present but different token means the session was superseded.
func (c *Cache) Validate(ctx context.Context, userID uuid.UUID, token string) error {
	cached, err := c.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		// Redis unreachable, fail open
		return nil
	}
	if cached != token {
		return ErrSessionNotFound
	}
	return nil
}
