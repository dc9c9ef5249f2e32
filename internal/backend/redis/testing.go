package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the provided client and embedder (test-only).
func NewStoreForTest(c rueidis.Client, embed Embedder) *Store {
	return &Store{client: c, embed: embed}
}
