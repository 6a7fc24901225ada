package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore guarda tokens de sesión invalidados antes de su expiración.
type RevocationStore interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// memoryRevocationStore vive lo que vive el proceso y no se comparte entre
// instancias. Las entradas no expiran: un token revocado sigue reportándose
// como revocado hasta reiniciar.
type memoryRevocationStore struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{
		items: make(map[string]struct{}),
	}
}

func (s *memoryRevocationStore) Add(_ context.Context, token string, _ time.Duration) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[token] = struct{}{}
	return nil
}

func (s *memoryRevocationStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[token]
	return ok, nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisRevocationStore comparte la lista entre instancias. Cada entrada vive
// lo que le queda al token.
type redisRevocationStore struct {
	client redisKVClient
	prefix string
}

func NewRedisRevocationStore(client redis.UniversalClient) RevocationStore {
	if client == nil {
		return nil
	}
	return &redisRevocationStore{
		client: client,
		prefix: "auth:revoked:",
	}
}

func (s *redisRevocationStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.key(token), "1", ttl).Err()
}

func (s *redisRevocationStore) Contains(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRevocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}
