package redis

import (
	"context"
	"strings"

	"github.com/kestrel-cloud/vqgate/internal/backend"
)

// Health pings the backend and reads the server version from INFO.
// A failed ping reports disconnected with the underlying error; a
// missing version is tolerated.
func (s *Store) Health(ctx context.Context) (backend.Health, error) {
	if err := s.Ping(ctx); err != nil {
		return backend.Health{Connected: false}, err
	}

	h := backend.Health{Connected: true}

	cmd := s.b().Arbitrary("INFO").Args("server").Build()
	info, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return h, nil
	}
	h.Version = parseServerVersion(info)
	return h, nil
}

// parseServerVersion extracts redis_version from an INFO server block.
func parseServerVersion(info string) string {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimRight(line, "\r"), "redis_version:"); ok {
			return v
		}
	}
	return ""
}
