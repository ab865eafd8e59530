//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"registrar/internal/platform/mongodb"
)

// MongoContainer wraps a testcontainers MongoDB instance.
type MongoContainer struct {
	Container testcontainers.Container
	URI       string
	Client    *mongo.Client
	DB        *mongo.Database
}

// NewMongoContainer starts a new MongoDB container.
func NewMongoContainer(t *testing.T) *MongoContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcmongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get mongodb connection string: %v", err)
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         uri,
		Database:    "registrar_test",
		MinPoolSize: 1,
		MaxPoolSize: 20,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to mongodb: %v", err)
	}

	mc := &MongoContainer{
		Container: container,
		URI:       uri,
		Client:    client,
		DB:        db,
	}

	// Note: We don't register t.Cleanup here because the container is managed
	// by the singleton Manager and shared across test suites. Ryuk handles cleanup.

	return mc
}
