// Package mongodb owns the MongoDB client used by the document stores.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI         string
	Database    string
	MinPoolSize uint64
	MaxPoolSize uint64
	MaxIdleTime time.Duration
}

// Connect creates a client with the configured pool limits and verifies the
// connection with a short ping. The returned database handle is scoped to
// cfg.Database; callers own client.Disconnect.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMaxConnIdleTime(cfg.MaxIdleTime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
