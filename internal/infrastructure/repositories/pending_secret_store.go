package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/redis/go-redis/v9"
)

// MemoryPendingSecretStore keeps pending TOTP secrets for the process
// lifetime. Concurrent Set calls for one email are last-write-wins.
type MemoryPendingSecretStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryPendingSecretStore creates an empty in-memory store
func NewMemoryPendingSecretStore() *MemoryPendingSecretStore {
	return &MemoryPendingSecretStore{secrets: make(map[string]string)}
}

// Get implements domain.PendingSecretStore
func (s *MemoryPendingSecretStore) Get(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[email]
	if !ok {
		return "", domain.ErrPendingSecretNotFound
	}
	return secret, nil
}

// Set implements domain.PendingSecretStore
func (s *MemoryPendingSecretStore) Set(_ context.Context, email, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[email] = secret
	return nil
}

// Delete implements domain.PendingSecretStore
func (s *MemoryPendingSecretStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, email)
	return nil
}

// RedisPendingSecretStore shares pending TOTP secrets between instances
type RedisPendingSecretStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPendingSecretStore creates a Redis-backed store. A zero ttl keeps
// keys until they are confirmed or overwritten.
func NewRedisPendingSecretStore(client *redis.Client, ttl time.Duration) *RedisPendingSecretStore {
	return &RedisPendingSecretStore{
		client: client,
		prefix: "totp:pending:",
		ttl:    ttl,
	}
}

// Get implements domain.PendingSecretStore
func (s *RedisPendingSecretStore) Get(ctx context.Context, email string) (string, error) {
	secret, err := s.client.Get(ctx, s.prefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrPendingSecretNotFound
		}
		return "", err
	}
	return secret, nil
}

// Set implements domain.PendingSecretStore
func (s *RedisPendingSecretStore) Set(ctx context.Context, email, secret string) error {
	return s.client.Set(ctx, s.prefix+email, secret, s.ttl).Err()
}

// Delete implements domain.PendingSecretStore
func (s *RedisPendingSecretStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.prefix+email).Err()
}

var (
	_ domain.PendingSecretStore = (*MemoryPendingSecretStore)(nil)
	_ domain.PendingSecretStore = (*RedisPendingSecretStore)(nil)
)
