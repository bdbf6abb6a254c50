package usage

import (
	"context"
	"strings"
)

// NewStore picks a backend from configuration: postgres when DATABASE_URL is
// set, then redis, then a local file, falling back to in-memory.
func NewStore(ctx context.Context, databaseURL, redisAddr, filePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(redisAddr) != "" {
		return NewRedisStore(ctx, redisAddr)
	}
	if strings.TrimSpace(filePath) != "" {
		return NewFileStore(filePath)
	}
	return NewInMemoryStore(), nil
}
