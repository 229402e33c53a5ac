package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmapper-backend/internal/logger"
)

const oauthStateTTL = 10 * time.Minute

// OAuthStateStore holds single-use OAuth state tokens between the login
// redirect and the provider callback.
type OAuthStateStore interface {
	Put(ctx context.Context, state string) error
	// Take consumes the state; a second Take of the same state returns false.
	Take(ctx context.Context, state string) (bool, error)
}

// NewOAuthStateStore returns a redis-backed store when REDIS_ADDR is set and
// falls back to an in-process map otherwise. The in-process store only works
// for single-instance deployments.
func NewOAuthStateStore(log *logger.Logger) (OAuthStateStore, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Warn("REDIS_ADDR not set, using in-process OAuth state store")
		return NewMemoryOAuthStateStore(), nil
	}
	return NewRedisOAuthStateStore(log, addr)
}

type redisOAuthStateStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisOAuthStateStore(log *logger.Logger, addr string) (OAuthStateStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisOAuthStateStore{
		log: log.With("service", "RedisOAuthStateStore"),
		rdb: rdb,
	}, nil
}

func (s *redisOAuthStateStore) key(state string) string {
	return "oauth_state:" + state
}

func (s *redisOAuthStateStore) Put(ctx context.Context, state string) error {
	return s.rdb.Set(ctx, s.key(state), "1", oauthStateTTL).Err()
}

func (s *redisOAuthStateStore) Take(ctx context.Context, state string) (bool, error) {
	deleted, err := s.rdb.Del(ctx, s.key(state)).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

type memoryOAuthStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func NewMemoryOAuthStateStore() OAuthStateStore {
	return &memoryOAuthStateStore{states: map[string]time.Time{}}
}

func (s *memoryOAuthStateStore) Put(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, expires := range s.states {
		if expires.Before(now) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(oauthStateTTL)
	return nil
}

func (s *memoryOAuthStateStore) Take(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return expires.After(time.Now()), nil
}
