package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"health-service-api/internal/config"

	"github.com/redis/go-redis/v9"
)

// ============================================================
// MFA Handshake Session Store
// ============================================================
//
// Bridges the gap between "password verified" and "TOTP verified" without
// minting a long-lived credential prematurely. Entries must become
// unreadable after their TTL even with no intervening request.

// SessionStore maps a one-time handshake token to a pending user ID
type SessionStore interface {
	Put(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Get(ctx context.Context, token string) (uint, bool, error)
	// Consume returns the user ID and removes the entry in one step, so a
	// handshake token can be redeemed at most once.
	Consume(ctx context.Context, token string) (uint, bool, error)
	Delete(ctx context.Context, token string) error
	// Close releases the store's background resources
	Close() error
}

// NewSessionStore selects the store implementation from configuration:
// redis when an address is configured, otherwise in-process memory.
func NewSessionStore(cfg *config.SessionConfig) SessionStore {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		log.Printf("✅ MFA session store: redis [%s]", cfg.RedisAddr)
		return NewRedisSessionStore(client)
	}
	log.Println("✅ MFA session store: in-memory")
	return NewMemorySessionStore()
}

// ============================================================
// In-memory implementation
// ============================================================

type sessionEntry struct {
	UserID    uint
	ExpiresAt time.Time
}

// MemorySessionStore is a mutex-guarded expiring map. Suitable for a single
// process; swap in the redis store for multi-process deployments.
type MemorySessionStore struct {
	mu        sync.RWMutex
	store     map[string]sessionEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{
		store: make(map[string]sessionEntry),
		done:  make(chan struct{}),
	}
	// Cleanup expired handshakes every minute
	go s.cleanupLoop()
	return s
}

// Put stores a handshake token for the given TTL
func (s *MemorySessionStore) Put(_ context.Context, token string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[token] = sessionEntry{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the pending user ID for a token, if present and unexpired
func (s *MemorySessionStore) Get(_ context.Context, token string) (uint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.store[token]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return 0, false, nil
	}
	return entry.UserID, true, nil
}

// Consume removes and returns the entry under the write lock, so exactly
// one concurrent caller wins.
func (s *MemorySessionStore) Consume(_ context.Context, token string) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.store[token]
	if !ok {
		return 0, false, nil
	}
	delete(s.store, token)
	if time.Now().After(entry.ExpiresAt) {
		return 0, false, nil
	}
	return entry.UserID, true, nil
}

// Delete removes a handshake token
func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, token)
	return nil
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// cleanupLoop periodically removes expired handshakes until Close
func (s *MemorySessionStore) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			for token, entry := range s.store {
				if time.Now().After(entry.ExpiresAt) {
					delete(s.store, token)
				}
			}
			s.mu.Unlock()
		}
	}
}

// ============================================================
// Redis implementation
// ============================================================

const sessionKeyPrefix = "mfa:handshake:"

// RedisSessionStore keeps handshakes in redis with native TTL expiry
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Put stores a handshake token for the given TTL
func (s *RedisSessionStore) Put(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err()
}

// Get returns the pending user ID for a token, if present and unexpired
func (s *RedisSessionStore) Get(ctx context.Context, token string) (uint, bool, error) {
	return s.parse(s.client.Get(ctx, sessionKeyPrefix+token).Result())
}

// Consume removes and returns the entry atomically via GETDEL
func (s *RedisSessionStore) Consume(ctx context.Context, token string) (uint, bool, error) {
	return s.parse(s.client.GetDel(ctx, sessionKeyPrefix+token).Result())
}

// Delete removes a handshake token
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// Close closes the underlying redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func (s *RedisSessionStore) parse(val string, err error) (uint, bool, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("session store: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(userID), true, nil
}
