// Package cmd holds the shared wiring helpers the CLI binaries use.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plandyhq/plandy/pkg/persistence"
	"github.com/plandyhq/plandy/pkg/persistence/file"
	"github.com/plandyhq/plandy/pkg/persistence/postgres"
	"github.com/plandyhq/plandy/pkg/persistence/redis"
)

// NewPersistence selects a store from the URL scheme. Anything that is not
// postgres or redis falls back to the file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgres.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
