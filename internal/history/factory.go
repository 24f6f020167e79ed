package history

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise a
// session-scoped file store.
func NewStore(ctx context.Context, databaseURL, historyDir string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewFileStore(historyDir)
}
