// Package redis implements the vector-search backend on Redis 8+ via
// rueidis, using FT.SEARCH KNN queries over per-collection indexes.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kestrel-cloud/vqgate/internal/backend"
)

// Compile-time check: Store implements backend.Client.
var _ backend.Client = (*Store)(nil)

// keyPrefix namespaces all gateway keys and indexes in Redis.
const keyPrefix = "vq:"

// Embedder vectorizes query text before KNN search (ISP).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds connection parameters for the Redis backend.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements backend.Client via rueidis.
type Store struct {
	client rueidis.Client
	embed  Embedder
}

// NewStore creates a Redis backend client. The query embedder is attached
// afterwards via WithEmbedder: the embedding cache lives on this same
// store, so the embedder chain is built around it.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// WithEmbedder attaches the query embedder used by SemanticSearch.
func (s *Store) WithEmbedder(embed Embedder) *Store {
	s.embed = embed
	return s
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the backend responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for backend: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

func indexName(collection string) string {
	return keyPrefix + collection + ":idx"
}

func docPrefix(collection string) string {
	return keyPrefix + collection + ":"
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
